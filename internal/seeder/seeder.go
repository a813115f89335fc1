// Package seeder populates in-memory stores with demo tenants so the service
// is usable out of the box when no database is configured. Tenant IDs are
// fixed so session tokens can be minted for them with cmd/tokengen.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"refchain/internal/tenant/models"
)

// TenantStore defines methods for seeding tenants.
type TenantStore interface {
	Save(ctx context.Context, tenant *models.Tenant) error
}

// Seeder populates stores with demo data.
type Seeder struct {
	tenants TenantStore
	logger  *slog.Logger
}

// New creates a new seeder.
func New(tenants TenantStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		tenants: tenants,
		logger:  logger,
	}
}

// SeedAll populates all stores with demo data.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	count, err := s.seedTenants(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed tenants: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"tenants", count,
	)
	return nil
}

func (s *Seeder) seedTenants(ctx context.Context) (int, error) {
	demoTenants := []struct {
		id        string
		firstName string
		lastName  string
		email     string
		progress  int
		verified  bool
	}{
		{"tenant-demo-1", "Amina", "Odhiambo", "amina@example.com", 0, false},
		{"tenant-demo-2", "Brian", "Kiprotich", "brian@example.com", 0, false},
		{"tenant-demo-3", "Cynthia", "Wanjiru", "cynthia@example.com", 0, false},
		{"tenant-demo-4", "David", "Mutua", "david@example.com", 85, true},
		{"tenant-demo-5", "Esther", "Njeri", "esther@example.com", 42, false},
	}

	for _, t := range demoTenants {
		tenant := &models.Tenant{
			ID: t.id,
			PersonalInfo: models.PersonalInfo{
				FirstName: t.firstName,
				LastName:  t.lastName,
				Email:     t.email,
			},
			VerificationProgress: t.progress,
			IsVerified:           t.verified,
		}

		if err := s.tenants.Save(ctx, tenant); err != nil {
			return 0, err
		}
	}

	return len(demoTenants), nil
}

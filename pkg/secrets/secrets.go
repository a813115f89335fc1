package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "refchain/pkg/domain-errors"
)

// tokenBytes gives a 256-bit token space. Provider-facing tokens are the sole
// credential for unauthenticated callbacks, so guessing must stay infeasible.
const tokenBytes = 32

// GenerateToken creates a cryptographically secure random token.
// Returns a base64url-encoded string suitable for reference callback links.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

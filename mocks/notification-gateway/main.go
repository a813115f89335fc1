package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "8082"
	defaultAPIKey    = "notification-gateway-secret-key"
	defaultLatencyMs = "100"
)

type MessageRequest struct {
	Kind           string `json:"kind"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	TenantName     string `json:"tenant_name"`
	ReferenceType  string `json:"reference_type"`
	Token          string `json:"token"`
}

type MessageResponse struct {
	MessageID  string `json:"message_id"`
	Status     string `json:"status"`
	AcceptedAt string `json:"accepted_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/api/v1/messages/send", handleSend)
	http.HandleFunc("/send", handleSend) // Simplified path for adapter

	log.Printf("📮 Mock Notification Gateway starting on port %s", port)
	log.Printf("📝 API Key: %s", apiKey)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "notification-gateway",
		"version": "1.0.0",
	})
}

var validKinds = map[string]bool{
	"reference_request":   true,
	"reference_reminder":  true,
	"reference_completed": true,
	"reference_declined":  true,
	"verification_status": true,
}

func handleSend(w http.ResponseWriter, r *http.Request) {
	// Simulate latency
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	log.Printf("📥 Incoming request: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	authHeader := r.Header.Get("X-API-Key")
	if authHeader == "" {
		sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
		return
	}
	if authHeader != apiKey {
		sendError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.RecipientEmail == "" {
		sendError(w, "recipient_email is required", http.StatusBadRequest)
		return
	}
	if !validKinds[req.Kind] {
		sendError(w, "unknown message kind: "+req.Kind, http.StatusBadRequest)
		return
	}

	// "Magic" recipients let e2e tests control the gateway's behavior.
	local := req.RecipientEmail
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	switch local {
	case "outage":
		sendError(w, "Upstream provider unavailable", http.StatusBadGateway)
		log.Printf("🔥 Simulated provider outage for: %s", req.RecipientEmail)
		return
	case "bounce":
		respond(w, MessageResponse{
			MessageID:  messageID(req),
			Status:     "bounced",
			AcceptedAt: time.Now().UTC().Format(time.RFC3339),
		})
		log.Printf("↩️  Simulated bounce for: %s", req.RecipientEmail)
		return
	case "spam":
		respond(w, MessageResponse{
			MessageID:  messageID(req),
			Status:     "rejected",
			AcceptedAt: time.Now().UTC().Format(time.RFC3339),
		})
		log.Printf("🚫 Simulated spam rejection for: %s", req.RecipientEmail)
		return
	}

	resp := MessageResponse{
		MessageID:  messageID(req),
		Status:     "sent",
		AcceptedAt: time.Now().UTC().Format(time.RFC3339),
	}
	respond(w, resp)

	log.Printf("✅ Message accepted: kind=%s recipient=%s id=%s", req.Kind, req.RecipientEmail, resp.MessageID)
}

// messageID derives a deterministic ID so repeated e2e runs are comparable.
func messageID(req MessageRequest) string {
	hash := sha256.Sum256([]byte(req.Kind + "|" + req.RecipientEmail + "|" + req.Token))
	return "msg_" + hex.EncodeToString(hash[:8])
}

func respond(w http.ResponseWriter, resp MessageResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("❌ Error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}

package telegram

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"cerberus/pkg/logger"
)

// UpdateHandler processes one decoded update. A returned error makes
// the webhook answer non-OK so Telegram redelivers the update.
type UpdateHandler func(ctx context.Context, update Update) error

// WebhookHandler handles incoming Telegram webhook requests
// (framework-level). Updates are processed synchronously: storage
// failures inside the handler must fail the HTTP call loudly instead
// of being swallowed behind an early 200.
type WebhookHandler struct {
	updateHandler UpdateHandler
	log           *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
// The updateHandler will be called for each incoming update
func NewWebhookHandler(updateHandler UpdateHandler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		updateHandler: updateHandler,
		log:           log.With("component", "telegram_webhook"),
	}
}

// ServeHTTP implements http.Handler interface
func (wh *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only accept POST requests
	if r.Method != http.MethodPost {
		wh.log.Warnw("Invalid webhook request method", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()

	// Parse update from request body
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		wh.log.Errorw("Failed to decode webhook update", "request_id", requestID, "error", err)
		wh.sendErrorResponse(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	wh.log.Debugw("Received webhook update",
		"request_id", requestID,
		"update_id", update.UpdateID,
		"has_message", update.HasMessage(),
	)

	if err := wh.updateHandler(r.Context(), update); err != nil {
		// Non-OK response so the transport layer retries the update
		wh.log.Errorw("Update handler failed",
			"request_id", requestID,
			"update_id", update.UpdateID,
			"error", err,
		)
		wh.sendErrorResponse(w, "Internal error", http.StatusInternalServerError)
		return
	}

	wh.sendSuccessResponse(w)
}

// sendSuccessResponse sends successful webhook response
func (wh *WebhookHandler) sendSuccessResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok": true,
	})
}

// sendErrorResponse sends error webhook response
func (wh *WebhookHandler) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":          false,
		"error":       message,
		"description": message,
	})
}

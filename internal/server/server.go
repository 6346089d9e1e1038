package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fixotrip/rescue-bot/internal/bot"
	"github.com/fixotrip/rescue-bot/internal/storage"
)

// Handler exposes the webhook and health endpoints.
type Handler struct {
	engine  *bot.Engine
	storage storage.Storage
	logger  *zap.Logger
}

// New builds the HTTP router.
func New(engine *bot.Engine, store storage.Storage, logger *zap.Logger) http.Handler {
	h := &Handler{
		engine:  engine,
		storage: store,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", h.handleWebhook)
	r.Get("/health", h.handleHealth)
	r.Get("/", h.handleHealth)

	return r
}

// webhookPayload is the inbound Fonnte callback body. Device identifies the
// connected WhatsApp device and is not used by the conversation flow.
type webhookPayload struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Device  string `json:"device"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload := parsePayload(r)
	if payload.Sender == "" || payload.Message == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	h.logger.Info("Received message", zap.String("sender", payload.Sender))

	if err := h.engine.HandleMessage(r.Context(), payload.Sender, payload.Message); err != nil {
		h.logger.Error("Webhook processing failed",
			zap.Error(err),
			zap.String("sender", payload.Sender))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type healthResponse struct {
	Status        string `json:"status"`
	Conversations int    `json:"conversations"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count conversations", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "FixoTrip bot running",
		Conversations: count,
	})
}

// parsePayload reads the callback body as JSON or a form post; Fonnte can be
// configured to send either. A body that parses as neither yields an empty
// payload, which the webhook acknowledges as ignored.
func parsePayload(r *http.Request) webhookPayload {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return webhookPayload{}
		}
		return webhookPayload{
			Sender:  r.PostFormValue("sender"),
			Message: r.PostFormValue("message"),
			Device:  r.PostFormValue("device"),
		}
	}

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return webhookPayload{}
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sozercan/card-inspector/apimodels"
	"github.com/sozercan/card-inspector/internal/inspector"
	"github.com/sozercan/card-inspector/internal/render"
)

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req apimodels.InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	slog.Debug("Received inspect request", "request", req)

	s.inspect(w, r, string(req.CardID))
}

func (s *Server) handleInspectCard(w http.ResponseWriter, r *http.Request) {
	s.inspect(w, r, chi.URLParam(r, "cardID"))
}

func (s *Server) inspect(w http.ResponseWriter, r *http.Request, cardID string) {
	result, err := s.inspector.Inspect(r.Context(), cardID)
	if err != nil {
		slog.Error("Inspect request failed", "card_id", cardID, "error", err)
		writeInspectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if s.explainer == nil {
		writeError(w, http.StatusServiceUnavailable, "Explanations are not configured (set OPENAI_API_KEY)")
		return
	}

	var req apimodels.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	slog.Debug("Received explain request", "request", req)

	result, err := s.explainer.Explain(r.Context(), req)
	if err != nil {
		slog.Error("Explain request failed", "card_id", req.CardID, "error", err)
		writeInspectionError(w, err)
		return
	}

	slog.Debug("Explain request completed successfully", "tokens", result.Metadata.TokensUsed)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(kind inspector.Kind) int {
	switch kind {
	case inspector.KindUsage:
		return http.StatusBadRequest
	case inspector.KindRequest, inspector.KindDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeInspectionError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(inspector.KindOf(err)), render.ErrorMessage(err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apimodels.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

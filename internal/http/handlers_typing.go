package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/versetype/versetype-api/internal/domain/model"
)

// TypingServiceInterface stores and lists typing results for a session's user.
type TypingServiceInterface interface {
	Save(ctx context.Context, token string, req model.SaveTypingResultRequest) (*model.TypingResult, error)
	History(ctx context.Context, token string) ([]*model.TypingResult, error)
}

// TypingHandlers serves /api/typing-results.
type TypingHandlers struct {
	Svc    TypingServiceInterface
	Logger *slog.Logger
}

func (h *TypingHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveTypingResultRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Svc.Save(r.Context(), SessionTokenFromContext(r.Context()), req)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

func (h *TypingHandlers) History(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.History(r.Context(), SessionTokenFromContext(r.Context()))
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

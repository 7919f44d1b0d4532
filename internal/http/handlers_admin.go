package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/versetype/versetype-api/internal/domain/model"
)

// ServiceDeskInterface is the operator tooling exposed under /api/admin.
type ServiceDeskInterface interface {
	FindUsersByName(ctx context.Context, name string) ([]model.UserMatch, error)
	GenerateTempLoginCode(ctx context.Context, userID string) (model.IssuedLoginCode, error)
}

// AdminHandlers serves service-desk routes. They run behind RequireAdmin.
type AdminHandlers struct {
	Svc    ServiceDeskInterface
	Logger *slog.Logger
}

// FindUsers handles GET /api/admin/users?name=.
func (h *AdminHandlers) FindUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.FindUsersByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// TempLoginCode handles POST /api/admin/users/{id}/login-code.
func (h *AdminHandlers) TempLoginCode(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	issued, err := h.Svc.GenerateTempLoginCode(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	op, _ := OperatorFromContext(r.Context())
	h.Logger.InfoContext(r.Context(), "temporary login code issued by operator",
		"subject", op.Subject, "email", op.Email, "user_id", userID)
	WriteJSON(w, http.StatusOK, issued)
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/versetype/versetype-api/internal/domain/model"
)

// AppInfoServiceInterface reads and publishes the latest client version.
type AppInfoServiceInterface interface {
	Get(ctx context.Context) (model.AppInfo, error)
	SetLatestVersion(ctx context.Context, req model.SetAppVersionRequest) (model.AppInfo, error)
}

// AppInfoHandlers serves GET /api/app-info and the admin PUT.
type AppInfoHandlers struct {
	Svc    AppInfoServiceInterface
	Logger *slog.Logger
}

func (h *AppInfoHandlers) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.Svc.Get(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

func (h *AppInfoHandlers) Set(w http.ResponseWriter, r *http.Request) {
	var req model.SetAppVersionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	info, err := h.Svc.SetLatestVersion(r.Context(), req)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	if op, ok := OperatorFromContext(r.Context()); ok {
		h.Logger.InfoContext(r.Context(), "app version set by operator", "subject", op.Subject, "version", info.Version)
	}
	WriteJSON(w, http.StatusOK, info)
}

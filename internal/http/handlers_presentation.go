package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/versetype/versetype-api/internal/domain/model"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 512
)

// PresentationServiceInterface defines presentation operations exposed over HTTP.
type PresentationServiceInterface interface {
	Get(ctx context.Context, key string) (model.PresentationState, error)
	SetCurrentSlide(ctx context.Context, req model.SetSlideRequest) (model.SetSlideResult, error)
	Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error)
}

// PresentationHandlers serves shared slide state and its WebSocket stream.
type PresentationHandlers struct {
	Svc      PresentationServiceInterface
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewPresentationHandlers builds handlers whose WebSocket accepts allowedOrigins,
// or same-origin requests only when the list is empty.
func NewPresentationHandlers(svc PresentationServiceInterface, allowedOrigins []string, logger *slog.Logger) *PresentationHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresentationHandlers{
		Svc:    svc,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		if len(allowed) > 0 {
			return false
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Get handles GET /api/presentations/{key}.
func (h *PresentationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// Put handles PUT /api/presentations/{key}.
func (h *PresentationHandlers) Put(w http.ResponseWriter, r *http.Request) {
	var req model.SetSlideRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Key = r.PathValue("key")
	res, err := h.Svc.SetCurrentSlide(r.Context(), req)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Stream handles GET /api/presentations/{key}/ws. The current state is sent first,
// then every applied change until the client disconnects.
func (h *PresentationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, stop, err := h.Svc.Subscribe(ctx, key)
	if err != nil {
		WriteServiceError(w, r, h.Logger, err)
		return
	}
	defer stop()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.Logger.DebugContext(ctx, "websocket upgrade failed", "key", key, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(st); err != nil {
				h.Logger.DebugContext(ctx, "websocket write failed", "key", key, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

// readUntilClosed drains client frames so control messages are processed,
// and closes done when the connection fails.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

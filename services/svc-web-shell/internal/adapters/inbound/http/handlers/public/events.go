package public

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/commands"
	"github.com/gorilla/websocket"
)

const maxClientMessageSize = 512

// ViewEvents streams the status of one view: the current status right away,
// then the terminal status once, after which the server closes the socket.
// A client that disconnects before that unmounts the view.
func (h *ShellHandler) ViewEvents(w http.ResponseWriter, r *http.Request) {
	view, ok := h.lookupView(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		reqLogger := h.log.WithContext(r.Context())
		reqLogger.Debug().Err(err).Str("view_id", view.ID().String()).Msg("view events upgrade failed")

		return
	}
	defer conn.Close()

	ctx := context.WithoutCancel(r.Context())
	clientGone := h.readUntilClosed(conn)

	if err := h.writeStatus(conn, view); err != nil {
		h.unmountAbandoned(ctx, view)

		return
	}

	if view.Health().Status().IsTerminal() {
		h.writeClose(conn, websocket.CloseNormalClosure, "resolved")

		return
	}

	pings := time.NewTicker(h.events.PingPeriod)
	defer pings.Stop()

	for {
		select {
		case <-view.Health().Resolved():
			// A view closed right before resolving keeps its last status.
			if view.IsClosed() {
				h.writeClose(conn, websocket.CloseGoingAway, "unmounted")

				return
			}

			if err := h.writeStatus(conn, view); err != nil {
				return
			}

			h.writeClose(conn, websocket.CloseNormalClosure, "resolved")

			return
		case <-view.Closed():
			h.writeClose(conn, websocket.CloseGoingAway, "unmounted")

			return
		case <-clientGone:
			h.unmountAbandoned(ctx, view)

			return
		case <-pings.C:
			deadline := time.Now().Add(h.events.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.unmountAbandoned(ctx, view)

				return
			}
		}
	}
}

// readUntilClosed drains client frames so control messages are processed.
// The returned channel closes once the client goes away or stops answering
// pings.
func (h *ShellHandler) readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})

	conn.SetReadLimit(maxClientMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.events.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.events.PongWait))
	})

	go func() {
		defer close(gone)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return gone
}

func (h *ShellHandler) writeStatus(conn *websocket.Conn, view *model.DashboardView) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.events.WriteWait)); err != nil {
		return err
	}

	return conn.WriteJSON(newViewHealthResponse(view))
}

func (h *ShellHandler) writeClose(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(h.events.WriteWait)

	err := conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		h.log.Debug().Err(err).Msg("view events close frame not sent")
	}
}

func (h *ShellHandler) unmountAbandoned(ctx context.Context, view *model.DashboardView) {
	_, err := h.app.Commands.UnmountDashboardView.Handle(ctx, commands.UnmountDashboardViewCommand{ID: view.ID()})
	if err != nil && !errors.Is(err, model.ErrViewNotFound) {
		reqLogger := h.log.WithContext(ctx)
		reqLogger.Warn().Err(err).Str("view_id", view.ID().String()).Msg("failed to unmount abandoned view")
	}
}

// checkOrigin accepts same host pages and the configured origins.
func (h *ShellHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return strings.EqualFold(u.Host, r.Host)
}

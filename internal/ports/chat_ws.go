package ports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Amund211/riftrewind/internal/app"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/Amund211/riftrewind/internal/session"
	"github.com/Amund211/riftrewind/internal/views"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer
	wsWriteWait = 10 * time.Second

	// Time allowed between frames from the peer, including pongs
	wsPongWait = 60 * time.Second

	// Must be less than wsPongWait
	wsPingPeriod = (wsPongWait * 9) / 10
)

const (
	FrameTypeSend  = "send"
	FrameTypeTurn  = "turn"
	FrameTypeError = "error"
)

type ChatFrame struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Turn  *views.TurnView `json:"turn,omitempty"`
	Error string          `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// chatConn serializes writes to a websocket shared by the read loop and in-flight sends
type chatConn struct {
	conn *websocket.Conn
	lock sync.Mutex
}

func (c *chatConn) write(frame ChatFrame) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	return c.conn.WriteJSON(frame)
}

func writeFrame(ctx context.Context, conn *chatConn, frame ChatFrame) {
	if err := conn.write(frame); err != nil {
		logging.FromContext(ctx).InfoContext(
			ctx, "Failed to write chat frame",
			slog.String("frameType", frame.Type),
			slog.String("error", err.Error()),
		)
	}
}

func (c *chatConn) ping() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func MakeChatWebsocketHandler(
	sendChatMessage app.SendChatMessage,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildMiddleware(
		"chatws", rootLogger, sentryMiddleware, sessionMiddleware,
		buildRateLimitMiddlewares(chatIPRateLimit, chatSessionRateLimit, jsonRateLimitExceeded),
	)

	// Each send frame is rate limited like a POST to /chat
	frameRateLimiters := newRequestRateLimiters(chatIPRateLimit, chatSessionRateLimit)
	allowFrame := func(r *http.Request) bool {
		for _, rateLimiter := range frameRateLimiters {
			if !rateLimiter.Consume(r) {
				logging.FromContext(r.Context()).InfoContext(r.Context(), "Rate limit exceeded", slog.String("key", rateLimiter.KeyFor(r)))
				return false
			}
		}
		return true
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		sess, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already written an error response
			logger.InfoContext(ctx, "Failed to upgrade chat connection", slog.String("error", err.Error()))
			return
		}
		defer ws.Close()
		logger.InfoContext(ctx, "Chat connection opened")

		conn := &chatConn{conn: ws}

		ws.SetReadLimit(maxChatMessageBytes)
		ws.SetReadDeadline(time.Now().Add(wsPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		connCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			ticker := time.NewTicker(wsPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-connCtx.Done():
					return
				case <-ticker.C:
					if err := conn.ping(); err != nil {
						return
					}
				}
			}
		}()

		for {
			var frame ChatFrame
			if err := ws.ReadJSON(&frame); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.InfoContext(ctx, "Chat connection closed unexpectedly", slog.String("error", err.Error()))
				}
				return
			}

			if frame.Type != FrameTypeSend {
				writeFrame(ctx, conn, ChatFrame{Type: FrameTypeError, Error: fmt.Sprintf("unknown frame type %q", frame.Type)})
				continue
			}

			if !allowFrame(r) {
				writeFrame(ctx, conn, ChatFrame{Type: FrameTypeError, Error: "Rate limit exceeded"})
				continue
			}

			// Replies outlive the connection, they are kept in the session's chat log
			go sendOverWebsocket(connCtx, conn, sendChatMessage, sess, frame.Text)
		}
	}

	return middleware(handler)
}

func sendOverWebsocket(ctx context.Context, conn *chatConn, sendChatMessage app.SendChatMessage, sess *session.Session, text string) {
	observe := func(turn domain.ChatTurn) {
		view := turnView(ctx, turn)
		writeFrame(ctx, conn, ChatFrame{Type: FrameTypeTurn, Turn: &view})
	}

	_, err := sendChatMessage(ctx, sess, text, observe)
	if err == nil {
		return
	}

	statusCode, message := chatErrorStatus(err)
	if statusCode == http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		reporting.Report(ctx, fmt.Errorf("failed to send chat message: %w", err))
	}
	writeFrame(ctx, conn, ChatFrame{Type: FrameTypeError, Error: message})
}

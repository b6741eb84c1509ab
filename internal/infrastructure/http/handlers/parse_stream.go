package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	commandWait = 30 * time.Second
	writeWait   = 10 * time.Second
)

// Frame types sent over the parse stream
const (
	FrameProgress = "progress"
	FrameResult   = "result"
	FrameError    = "error"
)

// StreamFrame is one server message on the parse stream
type StreamFrame struct {
	Type     string                       `json:"type"`
	Progress *inbound.ParseProgress       `json:"progress,omitempty"`
	Data     *inbound.ParseRecipeResponse `json:"data,omitempty"`
	Error    *errors.ErrorDetails         `json:"error,omitempty"`
}

// ParseStreamHandler streams parse progress over a WebSocket. The client
// sends one ParseRecipeCommand; the server answers with progress frames and
// then a single result or error frame before closing.
type ParseStreamHandler struct {
	recipes   inbound.RecipeService
	validator *Validator
	upgrader  websocket.Upgrader
}

// NewParseStreamHandler creates the handler. Browser origins are checked
// against allowedOrigins, where "*" admits any.
func NewParseStreamHandler(recipes inbound.RecipeService, validator *Validator, allowedOrigins []string) *ParseStreamHandler {
	return &ParseStreamHandler{
		recipes:   recipes,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Serve handles GET /api/v1/ws/parse
func (h *ParseStreamHandler) Serve(c *gin.Context) {
	log := middleware.LoggerFrom(c)
	requestID := c.GetString(middleware.RequestIDKey)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var cmd inbound.ParseRecipeCommand
	_ = conn.SetReadDeadline(time.Now().Add(commandWait))
	if err := conn.ReadJSON(&cmd); err != nil {
		h.writeError(conn, errors.NewAppError(errors.CodeBadRequest, "Invalid parse command", err.Error()), requestID, log)
		return
	}
	if err := h.validator.Struct(&cmd); err != nil {
		h.writeError(conn, toAppError(err), requestID, log)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	// a closed client cancels the parse
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("Parse stream client went away", zap.Error(err))
				}
				cancel()
				return
			}
		}
	}()

	res, err := h.recipes.ParseStream(ctx, cmd, func(p inbound.ParseProgress) {
		progress := p
		if err := h.write(conn, StreamFrame{Type: FrameProgress, Progress: &progress}); err != nil {
			log.Debug("Failed to write progress frame", zap.Error(err))
		}
	})
	if err != nil {
		h.writeError(conn, toAppError(err), requestID, log)
		return
	}

	if err := h.write(conn, StreamFrame{Type: FrameResult, Data: res}); err != nil {
		log.Warn("Failed to write parse result", zap.Error(err))
		return
	}
	h.close(conn, websocket.CloseNormalClosure, "done")
}

func (h *ParseStreamHandler) write(conn *websocket.Conn, frame StreamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (h *ParseStreamHandler) writeError(conn *websocket.Conn, appErr *errors.AppError, requestID string, log *zap.Logger) {
	closeCode := websocket.ClosePolicyViolation
	if appErr.StatusCode() >= http.StatusInternalServerError {
		closeCode = websocket.CloseInternalServerErr
		log.Error("Parse stream failed", zap.String("code", string(appErr.Code)), zap.Error(appErr))
	}
	details := errors.ToErrorResponse(appErr, requestID).Error
	if err := h.write(conn, StreamFrame{Type: FrameError, Error: &details}); err != nil {
		log.Debug("Failed to write error frame", zap.Error(err))
		return
	}
	h.close(conn, closeCode, string(appErr.Code))
}

func (h *ParseStreamHandler) close(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.Wrap(err, "An unexpected error occurred")
}

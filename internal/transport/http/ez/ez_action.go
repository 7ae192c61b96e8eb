package ez

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/domain"
	"taskhub/internal/transport/http/middleware"
	resp "taskhub/internal/transport/http/response"
)

type Binder string

const (
	BindJSON Binder = "json"
	BindNone Binder = "none" // handler reads c.Param itself
)

// AErr carries the HTTP status and the client-facing message.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }

// Action is one endpoint: bind I, run Handler, wrap its payload with Msg.
type Action[I any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int    // success status, 200 when zero
	Msg     string // success message
	Handler func(c *gin.Context, in *I) (gin.H, error)
}

func Register[I any](g *gin.RouterGroup, l *zap.Logger, a Action[I]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if a.Binder == BindJSON {
			// an empty body binds to the zero value so field checks report it
			if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
				resp.Abort(c, http.StatusBadRequest, "Invalid request body")
				return
			}
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, l, err)
			return
		}
		c.JSON(status, resp.OK(a.Msg, out))
	}
	g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// Fail maps err onto the envelope. Unknown errors are logged and hidden.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		resp.Abort(c, ae.Code, ae.Error())
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Abort(c, http.StatusBadRequest, ve.Msg)
		return
	}
	_ = c.Error(err)
	l.Error("request failed",
		zap.String("rid", middleware.RequestIDOf(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	resp.Abort(c, http.StatusInternalServerError, "")
}

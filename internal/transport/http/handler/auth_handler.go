package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/service"
	"taskhub/internal/transport/http/ez"
	"taskhub/internal/transport/http/middleware"
)

type AuthHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, l *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Public, h.log, ez.Action[service.SignupRequest]{
		Method:  http.MethodPost,
		Path:    "/auth/signup",
		Binder:  ez.BindJSON,
		Msg:     "Congratulations!! Account has been created for you..",
		Handler: h.signup,
	})
	ez.Register(g.Public, h.log, ez.Action[service.LoginRequest]{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Binder:  ez.BindJSON,
		Msg:     "Login successful..",
		Handler: h.login,
	})
	ez.Register(g.Authed, h.log, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: ez.BindNone,
		Msg:    "Profile found successfully..",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"user": middleware.CurrentUser(c)}, nil
		},
	})
}

func (h *AuthHandler) signup(c *gin.Context, in *service.SignupRequest) (gin.H, error) {
	_, err := h.svc.Signup(c.Request.Context(), *in)
	if errors.Is(err, service.ErrEmailTaken) {
		return nil, ez.BadRequest("This email is already registered")
	}
	return nil, err
}

func (h *AuthHandler) login(c *gin.Context, in *service.LoginRequest) (gin.H, error) {
	tok, u, err := h.svc.Login(c.Request.Context(), *in)
	switch {
	case errors.Is(err, service.ErrEmailNotRegistered):
		return nil, ez.BadRequest("This email is not registered!!")
	case errors.Is(err, service.ErrIncorrectPassword):
		return nil, ez.BadRequest("Incorrect password!!")
	case err != nil:
		return nil, err
	}
	return gin.H{"token": tok, "user": u}, nil
}

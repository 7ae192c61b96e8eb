package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/domain"
	"taskhub/internal/service"
	"taskhub/internal/transport/http/ez"
)

// UserHandler serves admin user management.
type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

func (h *UserHandler) Priority() int { return 30 }

func (h *UserHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Admin, h.log, ez.Action[struct{}]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindNone,
		Msg:     "Users fetched successfully",
		Handler: h.list,
	})
	ez.Register(g.Admin, h.log, ez.Action[struct{}]{
		Method:  http.MethodGet,
		Path:    "/users/:id",
		Binder:  ez.BindNone,
		Msg:     "User fetched successfully",
		Handler: h.get,
	})
	ez.Register(g.Admin, h.log, ez.Action[service.UserInput]{
		Method:  http.MethodPost,
		Path:    "/users",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Msg:     "User created successfully",
		Handler: h.create,
	})
	ez.Register(g.Admin, h.log, ez.Action[service.UserPatch]{
		Method:  http.MethodPut,
		Path:    "/users/:id",
		Binder:  ez.BindJSON,
		Msg:     "User updated successfully",
		Handler: h.update,
	})
	ez.Register(g.Admin, h.log, ez.Action[struct{}]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Binder:  ez.BindNone,
		Msg:     "User deleted successfully",
		Handler: h.delete,
	})
}

func userErr(err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return ez.NotFound("User not found")
	case errors.Is(err, service.ErrEmailTaken):
		return ez.BadRequest("Email already registered")
	}
	return err
}

func (h *UserHandler) list(c *gin.Context, _ *struct{}) (gin.H, error) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return gin.H{"users": users}, nil
}

func (h *UserHandler) get(c *gin.Context, _ *struct{}) (gin.H, error) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, userErr(err)
	}
	return gin.H{"user": u}, nil
}

func (h *UserHandler) create(c *gin.Context, in *service.UserInput) (gin.H, error) {
	u, err := h.svc.Create(c.Request.Context(), *in)
	if err != nil {
		return nil, userErr(err)
	}
	return gin.H{"user": u.Summary()}, nil
}

func (h *UserHandler) update(c *gin.Context, in *service.UserPatch) (gin.H, error) {
	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), *in)
	if err != nil {
		return nil, userErr(err)
	}
	return gin.H{"user": u}, nil
}

func (h *UserHandler) delete(c *gin.Context, _ *struct{}) (gin.H, error) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		return nil, userErr(err)
	}
	return nil, nil
}

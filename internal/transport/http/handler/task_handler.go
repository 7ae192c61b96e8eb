package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/domain"
	"taskhub/internal/service"
	"taskhub/internal/transport/http/ez"
	"taskhub/internal/transport/http/middleware"
)

type TaskHandler struct {
	svc *service.TaskService
	log *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, l *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: l}
}

func (h *TaskHandler) Priority() int { return 20 }

func (h *TaskHandler) MountAPI(g ez.Groups) {
	ez.Register(g.Authed, h.log, ez.Action[struct{}]{
		Method:  http.MethodGet,
		Path:    "/tasks",
		Binder:  ez.BindNone,
		Msg:     "Tasks found successfully..",
		Handler: h.list,
	})
	ez.Register(g.Authed, h.log, ez.Action[struct{}]{
		Method:  http.MethodGet,
		Path:    "/tasks/:id",
		Binder:  ez.BindNone,
		Msg:     "Task found successfully..",
		Handler: h.get,
	})
	ez.Register(g.Authed, h.log, ez.Action[domain.TaskInput]{
		Method:  http.MethodPost,
		Path:    "/tasks",
		Binder:  ez.BindJSON,
		Msg:     "Task created successfully..",
		Handler: h.create,
	})
	ez.Register(g.Authed, h.log, ez.Action[domain.TaskInput]{
		Method:  http.MethodPut,
		Path:    "/tasks/:id",
		Binder:  ez.BindJSON,
		Msg:     "Task updated successfully..",
		Handler: h.update,
	})
	ez.Register(g.Authed, h.log, ez.Action[struct{}]{
		Method:  http.MethodDelete,
		Path:    "/tasks/:id",
		Binder:  ez.BindNone,
		Msg:     "Task deleted successfully..",
		Handler: h.delete,
	})
}

func (h *TaskHandler) list(c *gin.Context, _ *struct{}) (gin.H, error) {
	tasks, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return gin.H{"tasks": tasks}, nil
}

func (h *TaskHandler) get(c *gin.Context, _ *struct{}) (gin.H, error) {
	t, err := h.svc.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	if errors.Is(err, service.ErrTaskNotFound) {
		return nil, ez.BadRequest("No task found..")
	}
	if err != nil {
		return nil, err
	}
	return gin.H{"task": t}, nil
}

func (h *TaskHandler) create(c *gin.Context, in *domain.TaskInput) (gin.H, error) {
	t, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c).ID, *in)
	if err != nil {
		return nil, err
	}
	return gin.H{"task": t}, nil
}

func (h *TaskHandler) update(c *gin.Context, in *domain.TaskInput) (gin.H, error) {
	t, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), *in)
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return nil, ez.BadRequest("Task with given id not found")
	case errors.Is(err, service.ErrNotTaskOwner):
		return nil, ez.Forbidden("You can't update task of another user")
	case err != nil:
		return nil, err
	}
	return gin.H{"task": t}, nil
}

func (h *TaskHandler) delete(c *gin.Context, _ *struct{}) (gin.H, error) {
	err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return nil, ez.BadRequest("Task with given id not found")
	case errors.Is(err, service.ErrNotTaskOwner):
		return nil, ez.Forbidden("You can't delete task of another user")
	case err != nil:
		return nil, err
	}
	return nil, nil
}

package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todone/internal/models"
	"github.com/adanyl0v/todone/internal/services"
	"github.com/adanyl0v/todone/internal/validation"
)

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	task, err := h.tasks.CreateTask(c, payload)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetTaskStats(c *gin.Context) {
	stats, err := h.tasks.TaskStats(c)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	task, err := h.tasks.UpdateTask(c, c.Param("id"), payload)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.DeleteTask(c, c.Param("id"))
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) readPayload(c *gin.Context) (validation.Payload, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return nil, false
	}
	return validation.Payload(body), true
}

func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		abort(c, newValidationError(verr))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(errTodoNotFound.Error()))
	default:
		h.logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("failed to handle request")
		abort(c, h.newInternalError(errorChain(err)))
	}
}

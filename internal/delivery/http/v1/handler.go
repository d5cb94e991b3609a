package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todone/internal/services"
)

type Handler interface {
	HandleRequestLog(c *gin.Context)
	HandleRecovery(c *gin.Context)
	HandleCORS(c *gin.Context)
	HandleNoRoute(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTaskStats(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type Options struct {
	// AllowedOrigins lists the exact origins that may call the API from a
	// browser. Requests without an Origin header are always allowed.
	AllowedOrigins []string
	// Diagnostics adds error details and stack traces to 500 responses.
	Diagnostics bool
}

type handlerImpl struct {
	logger         zerolog.Logger
	tasks          services.TaskService
	allowedOrigins map[string]struct{}
	diagnostics    bool
	recovery       gin.HandlerFunc
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
	opts Options,
) Handler {
	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origins[origin] = struct{}{}
	}

	h := &handlerImpl{
		logger:         logger,
		tasks:          taskService,
		allowedOrigins: origins,
		diagnostics:    opts.Diagnostics,
	}
	h.recovery = h.newRecovery()
	return h
}

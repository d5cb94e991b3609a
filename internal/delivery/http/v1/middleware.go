package v1

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = "Origin, Content-Type, Accept, Authorization"
)

func (h *handlerImpl) HandleRequestLog(c *gin.Context) {
	start := time.Now()
	method := c.Request.Method
	path := c.Request.URL.Path

	h.logger.Trace().
		Str("method", method).
		Str("path", path).
		Msg("incoming request")

	c.Next()

	status := c.Writer.Status()
	event := h.logger.Info()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	} else if status >= http.StatusBadRequest {
		event = h.logger.Warn()
	}
	event.
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}

// HandleRecovery turns a panic in a later handler into a 500 response. The
// process keeps serving.
func (h *handlerImpl) HandleRecovery(c *gin.Context) {
	h.recovery(c)
}

func (h *handlerImpl) newRecovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		stack := fmt.Sprintf("panic: %v\n\n%s", recovered, debug.Stack())
		h.logger.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		abort(c, h.newInternalError(stack))
	})
}

func (h *handlerImpl) HandleCORS(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin == "" {
		c.Next()
		return
	}

	if _, ok := h.allowedOrigins[origin]; !ok {
		h.logger.Warn().
			Str("origin", origin).
			Msg("rejected request from disallowed origin")
		abort(c, newForbiddenError(errOriginNotAllowed.Error()))
		return
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Methods", corsAllowedMethods)
	c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
	c.Header("Vary", "Origin")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}

	c.Next()
}

func (h *handlerImpl) HandleNoRoute(c *gin.Context) {
	apiErr := newNotFoundError(errRouteNotFound.Error())
	apiErr.Path = c.Request.URL.Path
	abort(c, apiErr)
}

package v1

import "github.com/gin-gonic/gin"

// NewRouter builds the engine serving the task API. Unmatched paths and
// methods get a JSON 404. The collection is served with and without a
// trailing slash instead of redirecting between the two.
func NewRouter(h Handler) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(h.HandleRequestLog, h.HandleRecovery, h.HandleCORS)
	router.NoRoute(h.HandleNoRoute)

	RegisterRoutes(router, h)
	return router
}

func RegisterRoutes(router gin.IRouter, h Handler) {
	todos := router.Group("/api/todos")
	for _, path := range []string{"", "/"} {
		todos.GET(path, h.HandleGetTasks)
		todos.POST(path, h.HandleCreateTask)
	}
	todos.GET("/stats", h.HandleGetTaskStats)
	todos.PUT("/:id", h.HandleUpdateTask)
	todos.DELETE("/:id", h.HandleDeleteTask)
}

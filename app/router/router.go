package router

import (
	"agentcrew/app/handler"
	"agentcrew/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router wires the HTTP surface of the coordinator.
type Router struct {
	taskHandler   *handler.TaskHandler
	reportHandler *handler.ReportHandler
	chatHandler   *handler.ChatHandler
}

// NewRouter creates a new Router
func NewRouter(taskHandler *handler.TaskHandler, reportHandler *handler.ReportHandler, chatHandler *handler.ChatHandler) *Router {
	return &Router{
		taskHandler:   taskHandler,
		reportHandler: reportHandler,
		chatHandler:   chatHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())

	v1 := engine.Group("/v1")
	v1.Use(middleware.Auth())
	{
		// Task lifecycle
		v1.POST("/tasks", r.taskHandler.Submit)
		v1.GET("/status/:task_id", r.taskHandler.Status)

		// Agent pool
		v1.GET("/workers", r.reportHandler.ListAgents)

		// Aggregation and reports
		v1.POST("/aggregate", r.reportHandler.Aggregate)
		v1.GET("/reports/team", r.reportHandler.TeamReport)
		v1.GET("/reports/agents/:name", r.reportHandler.AgentReport)

		// Health
		v1.GET("/health/system", r.reportHandler.SystemHealth)

		// Interactive session
		v1.GET("/chat", r.chatHandler.Chat)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

package handler

import (
	"errors"
	"net/http"

	"agentcrew/internal/coordinator"
	"agentcrew/internal/model"
	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ReportHandler handles agent listing, aggregation and report queries.
type ReportHandler struct {
	coord *coordinator.Coordinator
}

// NewReportHandler creates report handler
func NewReportHandler(coord *coordinator.Coordinator) *ReportHandler {
	return &ReportHandler{coord: coord}
}

// ListAgents lists registered agents
// @Summary List agents
// @Description List registered agents with status and load
// @Tags agents
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /workers [get]
func (h *ReportHandler) ListAgents(c *gin.Context) {
	agents := h.coord.ListAgents()
	c.JSON(http.StatusOK, gin.H{
		"agents": agents,
		"total":  len(agents),
	})
}

// Aggregate synthesizes a cross-task report
// @Summary Aggregate task results
// @Description Synthesize one report across the completed tasks among the given IDs
// @Tags reports
// @Accept json
// @Produce json
// @Param request body model.AggregateRequest true "Aggregation request"
// @Success 200 {object} model.AggregateResponse
// @Router /aggregate [post]
func (h *ReportHandler) Aggregate(c *gin.Context) {
	var req model.AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.coord.Aggregate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, coordinator.ErrNoCompletedTasks) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.ErrorCtx(c.Request.Context(), "aggregation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TeamReport returns the team status report
// @Summary Team report
// @Description Snapshot of all agents, performance metrics and narrative insights
// @Tags reports
// @Produce json
// @Success 200 {object} model.TeamReport
// @Router /reports/team [get]
func (h *ReportHandler) TeamReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.coord.TeamReport(c.Request.Context()))
}

// AgentReport returns the task history of one agent
// @Summary Agent report
// @Description Task history digest for a single agent
// @Tags reports
// @Produce json
// @Param name path string true "Agent name"
// @Success 200 {object} model.AgentReport
// @Router /reports/agents/{name} [get]
func (h *ReportHandler) AgentReport(c *gin.Context) {
	name := c.Param("name")
	report, err := h.coord.AgentReport(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// SystemHealth returns the 0-100 health score
// @Summary System health
// @Description Health score derived from agent availability and success rate
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health/system [get]
func (h *ReportHandler) SystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.coord.SystemHealth())
}

package handler

import (
	"errors"
	"net/http"

	"agentcrew/internal/coordinator"
	"agentcrew/internal/model"
	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task submission and status queries.
type TaskHandler struct {
	coord *coordinator.Coordinator
}

// NewTaskHandler creates task handler
func NewTaskHandler(coord *coordinator.Coordinator) *TaskHandler {
	return &TaskHandler{coord: coord}
}

// Submit dispatches a task to the best matching agent and waits for
// the outcome.
// @Summary Submit task
// @Description Submit a task, have it routed to the best agent and executed synchronously
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body model.SubmitRequest true "Task request"
// @Success 200 {object} model.SubmitResponse
// @Router /tasks [post]
func (h *TaskHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.coord.Submit(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, coordinator.ErrInvalidPriority):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, coordinator.ErrNoSuitableAgent):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			logger.ErrorCtx(c.Request.Context(), "failed to submit task: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status gets task status
// @Summary Get task status
// @Description Get task status by task ID
// @Tags tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} model.StatusResponse
// @Router /status/{task_id} [get]
func (h *TaskHandler) Status(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id required"})
		return
	}

	resp, err := h.coord.Status(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

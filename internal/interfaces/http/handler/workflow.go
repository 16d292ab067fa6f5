package handler

import (
	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes the loaded workflow catalog
type WorkflowHandler struct {
	BaseHandler
	service *creditapp.LifecycleService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(service *creditapp.LifecycleService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Statuses handles GET /credit/workflow/statuses
func (h *WorkflowHandler) Statuses(c *gin.Context) {
	h.Success(c, h.service.ListStatuses())
}

// Decisions handles GET /credit/workflow/decisions
func (h *WorkflowHandler) Decisions(c *gin.Context) {
	h.Success(c, h.service.ListDecisions())
}

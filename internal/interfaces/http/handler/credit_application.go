package handler

import (
	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/agrm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CreditApplicationHandler handles the credit application lifecycle endpoints
type CreditApplicationHandler struct {
	BaseHandler
	service *creditapp.LifecycleService
}

// NewCreditApplicationHandler creates a new CreditApplicationHandler
func NewCreditApplicationHandler(service *creditapp.LifecycleService) *CreditApplicationHandler {
	return &CreditApplicationHandler{
		service: service,
	}
}

// Create opens a new application.
// POST /credit/applications
func (h *CreditApplicationHandler) Create(c *gin.Context) {
	var req creditapp.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	app, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, app)
}

// List returns a filtered page of applications.
// GET /credit/applications
func (h *CreditApplicationHandler) List(c *gin.Context) {
	var filter creditapp.ListApplicationsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one application.
// GET /credit/applications/:id
func (h *CreditApplicationHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// Update replaces the editable fields of an application.
// PUT /credit/applications/:id
func (h *CreditApplicationHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	app, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// Validate runs every business rule against the application and lists violations.
// GET /credit/applications/:id/validation
func (h *CreditApplicationHandler) Validate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ValidateApplication(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AllowedTransitions lists the statuses the application may move to.
// GET /credit/applications/:id/transitions
func (h *CreditApplicationHandler) AllowedTransitions(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.AllowedTransitions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RequestTransition moves the application along the manual transition table.
// POST /credit/applications/:id/transitions
func (h *CreditApplicationHandler) RequestTransition(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = middleware.GetActor(c)

	result, err := h.service.RequestTransition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ResolveCommitteeDecision records the committee outcome.
// POST /credit/applications/:id/decision
func (h *CreditApplicationHandler) ResolveCommitteeDecision(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.CommitteeDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = middleware.GetActor(c)

	result, err := h.service.ResolveCommitteeDecision(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// History returns the transition audit trail, newest first.
// GET /credit/applications/:id/history
func (h *CreditApplicationHandler) History(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	entries, err := h.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// ComputeCapacity assesses repayment capacity and stores a snapshot.
// POST /credit/applications/:id/capacity
func (h *CreditApplicationHandler) ComputeCapacity(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.CapacityRequest
	// The body is optional
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	req.Actor = middleware.GetActor(c)

	result, err := h.service.ComputeCapacity(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// LatestCapacity returns the most recent capacity snapshot.
// GET /credit/applications/:id/capacity
func (h *CreditApplicationHandler) LatestCapacity(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.LatestCapacity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

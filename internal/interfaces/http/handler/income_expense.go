package handler

import (
	creditapp "github.com/agrm/backend/internal/application/credit"
	"github.com/agrm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FinancialRecordHandler handles income and expense records of an application
type FinancialRecordHandler struct {
	BaseHandler
	service *creditapp.LifecycleService
}

// NewFinancialRecordHandler creates a new FinancialRecordHandler
func NewFinancialRecordHandler(service *creditapp.LifecycleService) *FinancialRecordHandler {
	return &FinancialRecordHandler{
		service: service,
	}
}

// ListIncomes handles GET /credit/applications/:id/incomes
func (h *FinancialRecordHandler) ListIncomes(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	incomes, err := h.service.ListIncomes(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, incomes)
}

// AddIncome handles POST /credit/applications/:id/incomes
func (h *FinancialRecordHandler) AddIncome(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	income, err := h.service.AddIncome(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, income)
}

// UpdateIncome handles PUT /credit/incomes/:incomeId
func (h *FinancialRecordHandler) UpdateIncome(c *gin.Context) {
	id, ok := h.pathUUID(c, "incomeId")
	if !ok {
		return
	}
	var req creditapp.IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	income, err := h.service.UpdateIncome(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, income)
}

// VerifyIncome handles POST /credit/incomes/:incomeId/verify
func (h *FinancialRecordHandler) VerifyIncome(c *gin.Context) {
	id, ok := h.pathUUID(c, "incomeId")
	if !ok {
		return
	}
	var req creditapp.VerifyIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = middleware.GetActor(c)

	income, err := h.service.VerifyIncome(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, income)
}

// DeleteIncome handles DELETE /credit/incomes/:incomeId
func (h *FinancialRecordHandler) DeleteIncome(c *gin.Context) {
	id, ok := h.pathUUID(c, "incomeId")
	if !ok {
		return
	}
	if err := h.service.DeleteIncome(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListExpenses handles GET /credit/applications/:id/expenses
func (h *FinancialRecordHandler) ListExpenses(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	expenses, err := h.service.ListExpenses(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}

// AddExpense handles POST /credit/applications/:id/expenses
func (h *FinancialRecordHandler) AddExpense(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req creditapp.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	expense, err := h.service.AddExpense(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// UpdateExpense handles PUT /credit/expenses/:expenseId
func (h *FinancialRecordHandler) UpdateExpense(c *gin.Context) {
	id, ok := h.pathUUID(c, "expenseId")
	if !ok {
		return
	}
	var req creditapp.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	expense, err := h.service.UpdateExpense(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// DeleteExpense handles DELETE /credit/expenses/:expenseId
func (h *FinancialRecordHandler) DeleteExpense(c *gin.Context) {
	id, ok := h.pathUUID(c, "expenseId")
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

package handler

import (
	"github.com/agrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// CreditRoutes creates the /credit route group. actorMiddleware guards mutating endpoints.
func CreditRoutes(apps *CreditApplicationHandler, records *FinancialRecordHandler, workflow *WorkflowHandler, actorMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("credit", "/credit")
	group.Use(actorMiddleware)

	// Application lifecycle
	group.POST("/applications", apps.Create)
	group.GET("/applications", apps.List)
	group.GET("/applications/:id", apps.Get)
	group.PUT("/applications/:id", apps.Update)
	group.GET("/applications/:id/validation", apps.Validate)
	group.GET("/applications/:id/transitions", apps.AllowedTransitions)
	group.POST("/applications/:id/transitions", apps.RequestTransition)
	group.POST("/applications/:id/decision", apps.ResolveCommitteeDecision)
	group.GET("/applications/:id/history", apps.History)
	group.POST("/applications/:id/capacity", apps.ComputeCapacity)
	group.GET("/applications/:id/capacity", apps.LatestCapacity)

	// Income and expense records
	group.GET("/applications/:id/incomes", records.ListIncomes)
	group.POST("/applications/:id/incomes", records.AddIncome)
	group.PUT("/incomes/:incomeId", records.UpdateIncome)
	group.DELETE("/incomes/:incomeId", records.DeleteIncome)
	group.POST("/incomes/:incomeId/verify", records.VerifyIncome)
	group.GET("/applications/:id/expenses", records.ListExpenses)
	group.POST("/applications/:id/expenses", records.AddExpense)
	group.PUT("/expenses/:expenseId", records.UpdateExpense)
	group.DELETE("/expenses/:expenseId", records.DeleteExpense)

	// Workflow catalog
	wf := group.Group("workflow", "/workflow")
	wf.GET("/statuses", workflow.Statuses)
	wf.GET("/decisions", workflow.Decisions)

	return group
}

// SystemRoutes creates the /system route group
func SystemRoutes(h *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.GET("/info", h.GetSystemInfo)
	group.GET("/ping", h.Ping)
	return group
}

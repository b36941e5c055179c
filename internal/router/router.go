package router

import (
	"fintrack/internal/config"
	"fintrack/internal/handler"
	"fintrack/internal/middleware"
	"fintrack/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires services into handlers.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// services are plain structs built here and passed down; no globals
	transactionSvc := service.NewTransactionService(db)
	budgetSvc := service.NewBudgetService(db)
	reportSvc := service.NewReportService(db, budgetSvc)

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	accountHandler := handler.NewAccountHandler(db)
	protected.POST("/accounts", accountHandler.CreateAccount)
	protected.GET("/accounts", accountHandler.ListAccounts)
	protected.GET("/accounts/:id/balance", accountHandler.GetAccountBalance)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.ListCategories)

	transactionHandler := handler.NewTransactionHandler(transactionSvc, cfg.App.PageSize)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	budgetHandler := handler.NewBudgetHandler(budgetSvc)
	protected.POST("/budgets", budgetHandler.CreateBudget)
	protected.GET("/budgets", budgetHandler.ListBudgets)
	protected.PUT("/budgets/:id", budgetHandler.UpdateBudget)
	protected.DELETE("/budgets/:id", budgetHandler.DeleteBudget)

	reportHandler := handler.NewReportHandler(reportSvc, cfg.App.TrendMonths)
	protected.GET("/reports/monthly", reportHandler.MonthlySummary)
	protected.GET("/reports/categories", reportHandler.CategoryBreakdown)
	protected.GET("/reports/trends", reportHandler.Trends)
	protected.GET("/reports/alerts", reportHandler.BudgetAlerts)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}

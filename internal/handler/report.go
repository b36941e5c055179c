package handler

import (
	"strconv"

	"fintrack/internal/service"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the read-only report endpoints. TrendMonths is the
// window used when a trends request does not name one.
type ReportHandler struct {
	Service     *service.ReportService
	TrendMonths int
}

func NewReportHandler(svc *service.ReportService, trendMonths int) *ReportHandler {
	return &ReportHandler{Service: svc, TrendMonths: trendMonths}
}

func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	summary, err := h.Service.MonthlySummary(user.ID, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"month":             summary.Month,
		"year":              summary.Year,
		"total_income":      util.FormatAmount(summary.TotalIncome),
		"total_expenses":    util.FormatAmount(summary.TotalExpenses),
		"net_savings":       util.FormatAmount(summary.NetSavings),
		"transaction_count": summary.TransactionCount,
		"average_income":    util.FormatAmount(summary.AverageIncome),
		"average_expense":   util.FormatAmount(summary.AverageExpense),
	})
}

func (h *ReportHandler) CategoryBreakdown(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	typ := c.Query("type")

	report, err := h.Service.CategoryBreakdown(user.ID, month, year, typ)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	breakdown := make([]gin.H, 0, len(report.Breakdown))
	for _, share := range report.Breakdown {
		breakdown = append(breakdown, gin.H{
			"category_id":       share.CategoryID,
			"category_name":     share.CategoryName,
			"category_icon":     share.CategoryIcon,
			"total":             util.FormatAmount(share.Total),
			"percentage":        util.FormatAmount(share.Percentage),
			"transaction_count": share.TransactionCount,
		})
	}

	util.Success(c, util.Response{
		"month":     report.Month,
		"year":      report.Year,
		"type":      report.Type,
		"breakdown": breakdown,
	})
}

func (h *ReportHandler) Trends(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	months, _ := strconv.Atoi(c.Query("months"))
	if months <= 0 {
		months = h.TrendMonths
	}

	points, err := h.Service.Trends(user.ID, months)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(points))
	for _, p := range points {
		items = append(items, gin.H{
			"month":         p.Month,
			"year":          p.Year,
			"total_income":  util.FormatAmount(p.TotalIncome),
			"total_expense": util.FormatAmount(p.TotalExpense),
			"net_savings":   util.FormatAmount(p.NetSavings),
		})
	}

	util.Success(c, util.Response{
		"trends": items,
	})
}

func (h *ReportHandler) BudgetAlerts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	alerts, err := h.Service.BudgetAlerts(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(alerts))
	for i := range alerts {
		items = append(items, toBudgetStatusResp(&alerts[i]))
	}

	util.Success(c, util.Response{
		"alerts": items,
	})
}

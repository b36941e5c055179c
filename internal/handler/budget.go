package handler

import (
	"net/http"
	"strconv"

	"fintrack/internal/service"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// BudgetHandler serves budget CRUD and the consumption listing.
type BudgetHandler struct {
	Service *service.BudgetService
}

func NewBudgetHandler(svc *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{Service: svc}
}

type createBudgetReq struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Month      int    `json:"month" binding:"required"`
	Year       int    `json:"year" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

type updateBudgetReq struct {
	Amount *string `json:"amount"`
	Month  *int    `json:"month"`
	Year   *int    `json:"year"`
}

func toBudgetStatusResp(st *service.BudgetStatus) gin.H {
	return gin.H{
		"budget_id":     st.BudgetID,
		"category_id":   st.CategoryID,
		"category":      st.CategoryName,
		"icon":          st.CategoryIcon,
		"budget_amount": util.FormatAmount(st.Amount),
		"spent":         util.FormatAmount(st.Spent),
		"remaining":     util.FormatAmount(st.Remaining),
		"percent_used":  util.FormatAmount(st.PercentUsed),
		"exceeded":      st.Exceeded,
		"month":         st.Month,
		"year":          st.Year,
	}
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createBudgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	budget, err := h.Service.Create(user.ID, req.CategoryID, req.Month, req.Year, amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"budget": gin.H{
			"id":          budget.ID,
			"category_id": budget.CategoryID,
			"month":       budget.Month,
			"year":        budget.Year,
			"amount":      util.FormatAmount(budget.Amount),
		},
	})
}

func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	statuses, err := h.Service.List(user.ID, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(statuses))
	for i := range statuses {
		items = append(items, toBudgetStatusResp(&statuses[i]))
	}

	util.Success(c, util.Response{
		"budgets": items,
	})
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updateBudgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	patch := service.BudgetPatch{
		Month: req.Month,
		Year:  req.Year,
	}
	if req.Amount != nil {
		amount, err := util.ParseAmount(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
			return
		}
		patch.Amount = &amount
	}

	budget, err := h.Service.Update(user.ID, id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"budget": gin.H{
			"id":          budget.ID,
			"category_id": budget.CategoryID,
			"month":       budget.Month,
			"year":        budget.Year,
			"amount":      util.FormatAmount(budget.Amount),
		},
	})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(user.ID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "budget deleted",
	})
}

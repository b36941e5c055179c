package handler

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/service"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves the ledger commands. PageSize is the listing
// page size used when the request does not name one.
type TransactionHandler struct {
	Service  *service.TransactionService
	PageSize int
}

func NewTransactionHandler(svc *service.TransactionService, pageSize int) *TransactionHandler {
	return &TransactionHandler{Service: svc, PageSize: pageSize}
}

// ---------- request/response shapes ----------

type createTransactionReq struct {
	AccountID  uint   `json:"account_id" binding:"required"`
	CategoryID uint   `json:"category_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=income expense"`
	Amount     string `json:"amount" binding:"required"`
	Note       string `json:"note" binding:"max=255"`
	OccurredAt string `json:"occurred_at"`
}

type updateTransactionReq struct {
	AccountID  *uint   `json:"account_id"`
	CategoryID *uint   `json:"category_id"`
	Type       *string `json:"type"`
	Amount     *string `json:"amount"`
	Note       *string `json:"note"`
	OccurredAt *string `json:"occurred_at"`
}

type transactionResp struct {
	ID           uint      `json:"id"`
	AccountID    uint      `json:"account_id"`
	AccountName  string    `json:"account_name"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CategoryIcon string    `json:"category_icon"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	Note         string    `json:"note"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTransactionResp(t *models.Transaction) transactionResp {
	return transactionResp{
		ID:           t.ID,
		AccountID:    t.AccountID,
		AccountName:  t.Account.Name,
		CategoryID:   t.CategoryID,
		CategoryName: t.Category.Name,
		CategoryIcon: t.Category.Icon,
		Type:         t.Type,
		Amount:       util.FormatAmount(t.Amount),
		Note:         t.Note,
		OccurredAt:   t.OccurredAt,
		CreatedAt:    t.CreatedAt,
	}
}

// ---------- endpoints ----------

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	// occurrence date defaults to now
	occurredAt := time.Now()
	if req.OccurredAt != "" {
		t, ok := parseDate(req.OccurredAt)
		if !ok {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid occurred_at date")
			return
		}
		occurredAt = t
	}

	entry, err := h.Service.Create(user.ID, service.CreateTransactionInput{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Amount:     amount,
		OccurredAt: occurredAt,
		Note:       req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": toTransactionResp(entry),
	})
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	patch := service.TransactionPatch{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Note:       req.Note,
	}

	if req.Amount != nil {
		amount, err := util.ParseAmount(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
			return
		}
		patch.Amount = &amount
	}

	if req.OccurredAt != nil {
		t, ok := parseDate(*req.OccurredAt)
		if !ok {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid occurred_at date")
			return
		}
		patch.OccurredAt = &t
	}

	entry, err := h.Service.Update(user.ID, id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": toTransactionResp(entry),
	})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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
		"message": "transaction deleted",
	})
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = h.PageSize
	}

	var filter service.TransactionFilter

	if startStr := c.Query("start"); startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
			return
		}
		filter.From = &t
	}
	if endStr := c.Query("end"); endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end date must be YYYY-MM-DD")
			return
		}
		// end of that day: < end+1
		t = t.Add(24 * time.Hour)
		filter.To = &t
	}

	if v, err := strconv.Atoi(c.Query("account_id")); err == nil && v > 0 {
		filter.AccountID = uint(v)
	}
	if v, err := strconv.Atoi(c.Query("category_id")); err == nil && v > 0 {
		filter.CategoryID = uint(v)
	}
	if typ := c.Query("type"); typ == models.TypeIncome || typ == models.TypeExpense {
		filter.Type = typ
	}

	result, err := h.Service.List(user.ID, filter, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]transactionResp, 0, len(result.Data))
	for i := range result.Data {
		items = append(items, toTransactionResp(&result.Data[i]))
	}

	util.Success(c, util.Response{
		"data":        items,
		"total":       result.Total,
		"page":        result.Page,
		"limit":       result.Limit,
		"total_pages": result.TotalPages,
	})
}

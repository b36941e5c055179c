package handler

import (
	"net/http"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/service"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountHandler serves account CRUD. Balances are never set directly past
// creation; they only move through ledger commands.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type createAccountReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	InitialBalance string `json:"initial_balance"`
	AllowNegative  bool   `json:"allow_negative"`
}

type accountResp struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Balance       string `json:"balance"`
	AllowNegative bool   `json:"allow_negative"`
}

func toAccountResp(a *models.Account) accountResp {
	return accountResp{
		ID:            a.ID,
		Name:          a.Name,
		Balance:       util.FormatAmount(a.Balance),
		AllowNegative: a.AllowNegative,
	}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "account name is required")
		return
	}

	balance := decimal.Zero
	if req.InitialBalance != "" {
		d, err := decimal.NewFromString(req.InitialBalance)
		if err != nil || d.IsNegative() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid initial balance")
			return
		}
		balance = d
	}

	account := models.Account{
		UserID:         user.ID,
		Name:           req.Name,
		Balance:        balance,
		OpeningBalance: balance,
		AllowNegative:  req.AllowNegative,
	}
	if err := h.DB.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create account")
		return
	}

	util.Success(c, util.Response{
		"account": toAccountResp(&account),
	})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list accounts")
		return
	}

	items := make([]accountResp, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResp(&accounts[i]))
	}

	util.Success(c, util.Response{
		"accounts": items,
	})
}

// GetAccountBalance returns the cached balance together with a fresh
// recomputation from the ledger, as a consistency check endpoint.
func (h *AccountHandler) GetAccountBalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramID(c)
	if !ok {
		return
	}

	var account models.Account
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	derived, err := service.RecomputeBalance(h.DB, account.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to recompute balance")
		return
	}

	util.Success(c, util.Response{
		"account_id": account.ID,
		"balance":    util.FormatAmount(account.Balance),
		"derived":    util.FormatAmount(derived),
		"consistent": account.Balance.Round(2).Equal(derived.Round(2)),
	})
}

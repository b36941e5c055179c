package handler

import (
	"net/http"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category listing and user-owned category creation.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name string `json:"name" binding:"required,max=64"`
	Type string `json:"type" binding:"required,oneof=income expense"`
	Icon string `json:"icon" binding:"max=32"`
}

type categoryResp struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Icon   string `json:"icon"`
	Shared bool   `json:"shared"`
	Active bool   `json:"active"`
}

func toCategoryResp(cat *models.Category) categoryResp {
	return categoryResp{
		ID:     cat.ID,
		Name:   cat.Name,
		Type:   cat.Type,
		Icon:   cat.Icon,
		Shared: cat.Shared(),
		Active: cat.Active,
	}
}

// ListCategories returns shared defaults plus the caller's own categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	typ := c.Query("type")
	base := h.DB.Where("user_id IS NULL OR user_id = ?", user.ID)
	if typ == models.TypeIncome || typ == models.TypeExpense {
		base = base.Where("type = ?", typ)
	}

	var categories []models.Category
	if err := base.Order("id ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(&categories[i]))
	}

	util.Success(c, util.Response{
		"categories": items,
	})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category name is required")
		return
	}

	userID := user.ID
	category := models.Category{
		UserID: &userID,
		Name:   req.Name,
		Type:   req.Type,
		Icon:   req.Icon,
		Active: true,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}

	util.Success(c, util.Response{
		"category": toCategoryResp(&category),
	})
}

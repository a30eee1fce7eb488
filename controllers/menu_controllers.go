package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type menuCategory struct {
	models.Category
	Products []models.Product `json:"products"`
}

// GetMenu -> GET /menu?branchId=
// Active products grouped by category; uncategorized products come last.
func (mc *MenuController) GetMenu(c *gin.Context) {
	catQuery := mc.DB.Order("sort_order ASC, name ASC")
	if raw := c.Query("branchId"); raw != "" {
		branchID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondAppError(c, utils.Validation("invalid branchId"))
			return
		}
		catQuery = catQuery.Where("branch_id = ?", branchID)
	}

	var categories []models.Category
	if err := catQuery.Find(&categories).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var products []models.Product
	if err := mc.DB.Where("is_active = ?", true).Order("name ASC").Find(&products).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	byCategory := make(map[uint][]models.Product)
	var loose []models.Product
	for _, p := range products {
		if p.CategoryID == nil {
			loose = append(loose, p)
			continue
		}
		byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
	}

	menu := make([]menuCategory, 0, len(categories)+1)
	for _, cat := range categories {
		menu = append(menu, menuCategory{Category: cat, Products: nonNil(byCategory[cat.ID])})
	}
	if len(loose) > 0 {
		menu = append(menu, menuCategory{Category: models.Category{Name: "Other"}, Products: loose})
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", menu)
}

func nonNil(p []models.Product) []models.Product {
	if p == nil {
		return []models.Product{}
	}
	return p
}

type productBody struct {
	CategoryID  *uint  `json:"categoryId"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"min=0"`
	IsActive    *bool  `json:"isActive"`
}

// CreateProduct -> POST /admin/products
func (mc *MenuController) CreateProduct(c *gin.Context) {
	var body productBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product := models.Product{
		CategoryID:  body.CategoryID,
		Name:        body.Name,
		Description: body.Description,
		PriceCents:  body.PriceCents,
		IsActive:    true,
	}
	if err := mc.DB.Create(&product).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if body.IsActive != nil && !*body.IsActive {
		if err := mc.DB.Model(&product).Update("is_active", false).Error; err != nil {
			utils.RespondAppError(c, err)
			return
		}
		product.IsActive = false
	}
	utils.InfoLogger.WithFields(map[string]interface{}{
		"product": product.Name,
		"price":   utils.FormatCents(product.PriceCents),
	}).Info("product created")
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct -> PUT /admin/products/:id
func (mc *MenuController) UpdateProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body productBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := mc.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFound("product not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	updates := map[string]interface{}{
		"category_id": body.CategoryID,
		"name":        body.Name,
		"description": body.Description,
		"price_cents": body.PriceCents,
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if err := mc.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := mc.DB.First(&product, id).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

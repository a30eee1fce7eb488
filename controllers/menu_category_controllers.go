package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

type categoryBody struct {
	BranchID       uint   `json:"branchId" binding:"required"`
	Name           string `json:"name" binding:"required"`
	DefaultStation string `json:"defaultStation"`
	SortOrder      int    `json:"sortOrder"`
}

// parseDefaultStation allows an empty station (items then go to KITCHEN).
func parseDefaultStation(raw string) (models.Station, error) {
	if raw == "" {
		return "", nil
	}
	st, ok := models.ParseStation(raw)
	if !ok {
		return "", utils.Validation("invalid station %q", raw)
	}
	return st, nil
}

// GetAllCategories -> GET /admin/categories
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	q := mcc.DB.Order("sort_order ASC, name ASC")
	if b := branchScope(c); b != nil {
		q = q.Where("branch_id = ?", *b)
	}
	if err := q.Find(&categories).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// CreateCategory -> POST /admin/categories
func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	station, err := parseDefaultStation(body.DefaultStation)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	category := models.Category{
		BranchID:       body.BranchID,
		Name:           body.Name,
		DefaultStation: station,
		SortOrder:      body.SortOrder,
	}
	if err := mcc.DB.Create(&category).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory -> PUT /admin/categories/:id
func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	station, err := parseDefaultStation(body.DefaultStation)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var category models.Category
	if err := mcc.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFound("category not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}
	category.BranchID = body.BranchID
	category.Name = body.Name
	category.DefaultStation = station
	category.SortOrder = body.SortOrder
	if err := mcc.DB.Save(&category).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/middlewares"
	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type UserController struct {
	DB       *gorm.DB
	TokenTTL time.Duration
}

func NewUserController(db *gorm.DB, tokenTTL time.Duration) *UserController {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &UserController{DB: db, TokenTTL: tokenTTL}
}

// Register -> POST /admin/users (ADMIN only)
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required"`
		BranchID *uint  `json:"branchId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := strings.ToUpper(req.Role)
	if role != models.RoleAdmin && role != models.RoleWaiter && role != models.RoleKitchen {
		utils.RespondAppError(c, utils.Validation("invalid role %q", req.Role))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Password: string(hashed),
		Role:     role,
		BranchID: req.BranchID,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "Duplicate") {
			utils.RespondAppError(c, utils.Conflict("email already registered"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithFields(map[string]interface{}{"email": user.Email, "role": user.Role}).Info("staff user registered")
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

// Login -> POST /login
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		utils.RespondAppError(c, utils.Unauthorized("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondAppError(c, utils.Unauthorized("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role, user.BranchID, uc.TokenTTL)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithFields(map[string]interface{}{"email": user.Email, "role": user.Role}).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"role":      user.Role,
		"branchId":  user.BranchID,
		"expiresIn": int(uc.TokenTTL.Seconds()),
	})
}

// Logout -> POST /admin/logout
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.CtxToken)
	until := time.Now().Add(uc.TokenTTL)
	if claims := middlewares.StaffClaimsFrom(c); claims != nil && claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, until)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> GET /admin/profile
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		utils.RespondAppError(c, utils.Unauthorized("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, *userID).Error; err != nil {
		utils.RespondAppError(c, utils.NotFound("user not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// GetAllUsers -> GET /admin/users (ADMIN only)
func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Order("id ASC").Find(&users).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// PushSubscriptionController manages the devices that receive station pushes.
type PushSubscriptionController struct {
	DB *gorm.DB
}

func NewPushSubscriptionController(db *gorm.DB) *PushSubscriptionController {
	return &PushSubscriptionController{DB: db}
}

// Subscribe -> POST /admin/push-subscriptions
// Re-registering a device token moves it to the new station and reactivates it.
func (pc *PushSubscriptionController) Subscribe(c *gin.Context) {
	var body struct {
		Station     string `json:"station" binding:"required"`
		DeviceToken string `json:"deviceToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	station, ok := models.ParseStation(body.Station)
	if !ok {
		utils.RespondAppError(c, utils.Validation("invalid station %q", body.Station))
		return
	}

	sub := models.PushSubscription{
		UserID:      currentUserID(c),
		Station:     station,
		DeviceToken: strings.TrimSpace(body.DeviceToken),
		IsActive:    true,
	}
	err := pc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"station", "user_id", "is_active", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := pc.DB.Where("device_token = ?", sub.DeviceToken).First(&sub).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithField("station", station).Info("push subscription registered")
	utils.RespondJSON(c, http.StatusCreated, "Subscribed", sub)
}

// List -> GET /admin/push-subscriptions?station=
func (pc *PushSubscriptionController) List(c *gin.Context) {
	q := pc.DB.Where("is_active = ?", true).Order("id ASC")
	if raw := c.Query("station"); raw != "" {
		station, ok := models.ParseStation(raw)
		if !ok {
			utils.RespondAppError(c, utils.Validation("invalid station %q", raw))
			return
		}
		q = q.Where("station = ?", station)
	}
	var subs []models.PushSubscription
	if err := q.Find(&subs).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Push subscriptions", subs)
}

// Unsubscribe -> DELETE /admin/push-subscriptions/:id
func (pc *PushSubscriptionController) Unsubscribe(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var sub models.PushSubscription
	if err := pc.DB.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFound("subscription not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}
	if err := pc.DB.Model(&sub).Update("is_active", false).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unsubscribed", nil)
}

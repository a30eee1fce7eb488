package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type KitchenTicketController struct {
	Kitchen *services.KitchenService
}

func NewKitchenTicketController(kitchen *services.KitchenService) *KitchenTicketController {
	return &KitchenTicketController{Kitchen: kitchen}
}

// ListTickets -> GET /admin/kitchen-tickets?station=&status=&date=
func (kc *KitchenTicketController) ListTickets(c *gin.Context) {
	tickets, err := kc.Kitchen.ListTickets(c.Request.Context(), services.TicketFilter{
		Station:  c.Query("station"),
		Status:   c.Query("status"),
		Date:     c.Query("date"),
		BranchID: branchScope(c),
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen tickets", tickets)
}

// UpdateTicketStatus -> PUT /admin/kitchen-tickets/:id/status
func (kc *KitchenTicketController) UpdateTicketStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, utils.Validation("status is required"))
		return
	}

	ticket, err := kc.Kitchen.UpdateTicketStatus(c.Request.Context(), id, body.Status, currentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Ticket updated", ticket)
}

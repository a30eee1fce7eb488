package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/middlewares"
	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreatePublicTableOrder -> POST /public/tables/:id/orders
func (oc *OrderController) CreatePublicTableOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var in services.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondAppError(c, utils.Validation("invalid request body: %v", err))
		return
	}

	result, err := oc.Orders.CreatePublicTableOrder(c.Request.Context(), id, in, middlewares.TableClaimsFrom(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", result)
}

// CreateSessionOrder -> POST /admin/table-sessions/:id/orders (staff or table token)
func (oc *OrderController) CreateSessionOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var in services.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondAppError(c, utils.Validation("invalid request body: %v", err))
		return
	}

	actor := services.Actor{
		UserID: currentUserID(c),
		Role:   currentRole(c),
		Table:  middlewares.TableClaimsFrom(c),
	}
	result, err := oc.Orders.CreateSessionOrder(c.Request.Context(), id, in, actor)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", result)
}

// UpdateOrderStatus -> PUT /admin/orders/:id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, utils.Validation("invalid request body: %v", err))
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), id, body.Status, currentUserID(c), body.Note)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// TrackOrder -> GET /orders/track/:code?token=
func (oc *OrderController) TrackOrder(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.RespondAppError(c, utils.Unauthorized("tracking token required"))
		return
	}
	view, err := oc.Orders.GetOrderByTracking(c.Request.Context(), c.Param("code"), token)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", view)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type TableSessionController struct {
	Tables *services.TableService
	Orders *services.OrderService
}

func NewTableSessionController(tables *services.TableService, orders *services.OrderService) *TableSessionController {
	return &TableSessionController{Tables: tables, Orders: orders}
}

// ListSessions -> GET /admin/table-sessions?date=YYYY-MM-DD&status=ACTIVE|CLOSED
func (sc *TableSessionController) ListSessions(c *gin.Context) {
	list, err := sc.Tables.ListSessions(c.Request.Context(), services.SessionFilter{
		Date:     c.Query("date"),
		Status:   c.Query("status"),
		BranchID: branchScope(c),
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of table sessions", list)
}

// GetSession -> GET /admin/table-sessions/:id
func (sc *TableSessionController) GetSession(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	session, err := sc.Tables.GetSession(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table session", session)
}

// GetSessionOrders -> GET /admin/table-sessions/:id/orders
func (sc *TableSessionController) GetSessionOrders(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	orders, err := sc.Orders.ListSessionOrders(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session orders", orders)
}

// CloseSession -> POST /admin/table-sessions/:id/close
func (sc *TableSessionController) CloseSession(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var in services.CloseSessionInput
	if err := bindJSON(c, &in); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	in.ClosedByID = currentUserID(c)

	session, err := sc.Tables.CloseSession(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session closed", session)
}

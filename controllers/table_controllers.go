package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// GetPublicTable -> GET /public/tables/:id
func (tc *TableController) GetPublicTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	view, err := tc.Tables.GetPublicTable(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table", view)
}

// ListTables -> GET /admin/tables
func (tc *TableController) ListTables(c *gin.Context) {
	tables, err := tc.Tables.ListTables(c.Request.Context(), branchScope(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// OpenSession -> POST /admin/tables/:id/open-session
func (tc *TableController) OpenSession(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var in services.OpenSessionInput
	if err := bindJSON(c, &in); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	in.OpenedByID = currentUserID(c)

	session, err := tc.Tables.OpenSession(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session opened", session)
}

// RequestBill -> POST /admin/tables/:id/request-bill
func (tc *TableController) RequestBill(c *gin.Context) {
	tc.transition(c, tc.Tables.RequestBill, "Bill requested")
}

// Reserve -> POST /admin/tables/:id/reserve
func (tc *TableController) Reserve(c *gin.Context) {
	tc.transition(c, tc.Tables.Reserve, "Table reserved")
}

// Release -> POST /admin/tables/:id/release
func (tc *TableController) Release(c *gin.Context) {
	tc.transition(c, tc.Tables.Release, "Table released")
}

// MarkOutOfService -> POST /admin/tables/:id/out-of-service
func (tc *TableController) MarkOutOfService(c *gin.Context) {
	tc.transition(c, tc.Tables.MarkOutOfService, "Table marked out of service")
}

func (tc *TableController) transition(c *gin.Context, op func(ctx context.Context, id uint) (*models.Table, error), message string) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	table, err := op(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, table)
}

// CloseSession -> POST /admin/tables/:id/close-session
// Payment defaults to CASH; the session keeps whatever tip it already had.
func (tc *TableController) CloseSession(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var body struct {
		PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	}
	if err := bindJSON(c, &body); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	session, err := tc.Tables.CloseTableSession(c.Request.Context(), id, body.PaymentMethod, currentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session closed", session)
}

// GetTableQR -> GET /admin/tables/:id/qr
func (tc *TableController) GetTableQR(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	access, err := tc.Tables.IssueTableToken(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table QR token", access)
}

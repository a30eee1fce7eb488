package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/services"
)

func TestPublicTableView(t *testing.T) {
	app := setupTestApp(t)
	table := app.firstTable(t)

	code, resp := app.do(t, http.MethodGet, fmt.Sprintf("/public/tables/%d", table.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	var view services.TableView
	decode(t, resp, &view)
	assert.Equal(t, models.TableAvailable, view.Status)
	assert.Nil(t, view.ActiveSession)

	code, _ = app.do(t, http.MethodGet, "/public/tables/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(t, http.MethodGet, "/public/tables/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTableLifecycleOverHTTP(t *testing.T) {
	app := setupTestApp(t)
	waiter := app.login(t, waiterEmail)
	table := app.firstTable(t)
	base := fmt.Sprintf("/admin/tables/%d", table.ID)

	code, resp := app.do(t, http.MethodPost, base+"/request-bill", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code, "bill on an available table")
	assert.False(t, resp.Status)

	code, resp = app.do(t, http.MethodPost, base+"/open-session", waiter, map[string]interface{}{
		"customerName": "Familia Pérez",
		"guestCount":   4,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var session models.TableSession
	decode(t, resp, &session)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Equal(t, 4, session.GuestCount)
	require.NotNil(t, session.OpenedByID)

	code, _ = app.do(t, http.MethodPost, base+"/open-session", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code, "second session")

	code, _ = app.do(t, http.MethodPost, base+"/reserve", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code, "occupied table cannot be reserved")

	code, resp = app.do(t, http.MethodGet, "/admin/tables", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var tables []services.TableView
	decode(t, resp, &tables)
	require.Len(t, tables, 8)
	require.NotNil(t, tables[0].ActiveSession)
	assert.Equal(t, session.ID, tables[0].ActiveSession.ID)

	code, resp = app.do(t, http.MethodPost, base+"/request-bill", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var billed models.Table
	decode(t, resp, &billed)
	assert.Equal(t, models.TableBillRequested, billed.Status)

	code, resp = app.do(t, http.MethodPost, base+"/close-session", waiter, map[string]string{"paymentMethod": "card"})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var closed models.TableSession
	decode(t, resp, &closed)
	assert.Equal(t, models.SessionClosed, closed.Status)
	assert.Equal(t, models.PaymentCard, closed.PaymentMethod)

	code, _ = app.do(t, http.MethodPost, base+"/close-session", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code, "nothing to close")

	code, resp = app.do(t, http.MethodPost, base+"/reserve", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	code, resp = app.do(t, http.MethodPost, base+"/out-of-service", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodPost, base+"/open-session", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code, "out of service")
	code, resp = app.do(t, http.MethodPost, base+"/release", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, resp, &billed)
	assert.Equal(t, models.TableAvailable, billed.Status)
}

func TestTableQRToken(t *testing.T) {
	app := setupTestApp(t)
	admin := app.login(t, adminEmail)
	table := app.firstTable(t)

	code, resp := app.do(t, http.MethodGet, fmt.Sprintf("/admin/tables/%d/qr", table.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	var access services.TableAccess
	decode(t, resp, &access)
	assert.NotEmpty(t, access.Token)
	assert.Contains(t, access.URL, fmt.Sprintf("http://menu.test/t/%d?token=", table.ID))
	assert.Nil(t, access.SessionID)
}

func TestSessionListAndDetail(t *testing.T) {
	app := setupTestApp(t)
	waiter := app.login(t, waiterEmail)
	table := app.firstTable(t)
	burger := app.product(t, "Milanesa napolitana")

	code, resp := app.do(t, http.MethodPost, fmt.Sprintf("/admin/tables/%d/open-session", table.ID), waiter, nil)
	require.Equal(t, http.StatusCreated, code)
	var session models.TableSession
	decode(t, resp, &session)

	code, resp = app.do(t, http.MethodPost, fmt.Sprintf("/admin/table-sessions/%d/orders", session.ID), waiter, map[string]interface{}{
		"items": []map[string]interface{}{{"productId": burger.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, resp = app.do(t, http.MethodGet, fmt.Sprintf("/admin/table-sessions/%d", session.ID), waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var detail models.TableSession
	decode(t, resp, &detail)
	require.Len(t, detail.Orders, 1)
	assert.Len(t, detail.Orders[0].Items, 1)

	code, resp = app.do(t, http.MethodGet, fmt.Sprintf("/admin/table-sessions/%d/orders", session.ID), waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var orders []models.Order
	decode(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, burger.PriceCents, orders[0].TotalCents)

	code, resp = app.do(t, http.MethodPost, fmt.Sprintf("/admin/table-sessions/%d/close", session.ID), waiter, map[string]interface{}{
		"paymentMethod": "TRANSFER",
		"tipCents":      1000,
	})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = app.do(t, http.MethodGet, "/admin/table-sessions", waiter, nil)
	require.Equal(t, http.StatusOK, code)
	var list services.SessionList
	decode(t, resp, &list)
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, burger.PriceCents+1000, list.Totals.TransferCents)
	assert.Equal(t, int64(1000), list.Totals.TipsCents)
	assert.Equal(t, 1, list.Totals.ClosedCount)

	code, _ = app.do(t, http.MethodGet, "/admin/table-sessions?date=yesterday", waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodGet, "/admin/table-sessions/999", waiter, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

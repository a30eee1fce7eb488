package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Thiahho/Resto-Bar-sub001/config"
	"github.com/Thiahho/Resto-Bar-sub001/database"
	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/router"
	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

func TestMain(m *testing.M) {
	utils.InitLoggerWithLevel("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks one evening at a table:
// 1. login as waiter and kitchen
// 2. request-bill on a free table is rejected
// 3. open the table and order from the QR menu (kitchen + bar)
// 4. the kitchen works both tickets to DELIVERED
// 5. close the session in cash with a tip
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	waiter := loginTest(t, r, "waiter@restobar.local")
	cook := loginTest(t, r, "kitchen@restobar.local")

	var table models.Table
	require.NoError(t, db.Order("id ASC").First(&table).Error)

	code, _ := call(t, r, http.MethodPost, fmt.Sprintf("/admin/tables/%d/request-bill", table.ID), waiter, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, data := call(t, r, http.MethodPost, fmt.Sprintf("/admin/tables/%d/open-session", table.ID), waiter, map[string]interface{}{"guestCount": 2})
	require.Equal(t, http.StatusCreated, code)
	sessionID := uint(data["id"].(float64))

	orderID, tickets := createOrderTest(t, r, db, table.ID)
	require.Len(t, tickets, 2)
	assert.Equal(t, "K001", tickets[0]["ticketNumber"])
	assert.Equal(t, "B001", tickets[1]["ticketNumber"])

	checkCookingProcessTest(t, r, db, cook, orderID, tickets)

	closeSessionTest(t, r, db, waiter, sessionID, table.ID, orderID)
}

func TestConcurrentTableOrders(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	waiter := loginTest(t, r, "waiter@restobar.local")

	var table models.Table
	require.NoError(t, db.Order("id ASC").First(&table).Error)
	code, _ := call(t, r, http.MethodPost, fmt.Sprintf("/admin/tables/%d/open-session", table.ID), waiter, nil)
	require.Equal(t, http.StatusCreated, code)

	var milanesa models.Product
	require.NoError(t, db.Where("name = ?", "Milanesa napolitana").First(&milanesa).Error)
	body := map[string]interface{}{"items": []map[string]interface{}{{"productId": milanesa.ID, "quantity": 1}}}

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = call(t, r, http.MethodPost, fmt.Sprintf("/public/tables/%d/orders", table.ID), "", body)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated}, codes)

	var numbers []string
	require.NoError(t, db.Model(&models.KitchenTicket{}).Order("ticket_number ASC").Pluck("ticket_number", &numbers).Error)
	assert.Equal(t, []string{"K001", "K002"}, numbers)
}

// setupTestDB migrates and seeds a private in-memory sqlite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDemo(db))
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Load()
	cfg.PublicRateLimit = 1000
	hub := kds.NewHub()
	notifier := services.NewNotifier(hub, nil)
	return router.SetupRouter(router.Deps{
		Config:  cfg,
		DB:      db,
		Hub:     hub,
		Tables:  services.NewTableService(db, notifier, cfg.TableTokenTTL, cfg.PublicBaseURL),
		Orders:  services.NewOrderService(db, services.NewTicketRouter(services.DBTicketSequencer{}), notifier),
		Kitchen: services.NewKitchenService(db, notifier),
	})
}

// call sends a JSON request and returns the status and the data object of the envelope.
func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Errorf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	var data map[string]interface{}
	_ = json.Unmarshal(resp.Data, &data)
	return w.Code, data
}

func loginTest(t *testing.T, r *gin.Engine, email string) string {
	code, data := call(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": database.DemoPassword,
	})
	require.Equal(t, http.StatusOK, code)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createOrderTest(t *testing.T, r *gin.Engine, db *gorm.DB, tableID uint) (uint, []map[string]interface{}) {
	var milanesa, beer models.Product
	require.NoError(t, db.Where("name = ?", "Milanesa napolitana").First(&milanesa).Error)
	require.NoError(t, db.Where("name = ?", "Cerveza tirada").First(&beer).Error)

	code, data := call(t, r, http.MethodPost, fmt.Sprintf("/public/tables/%d/orders", tableID), "", map[string]interface{}{
		"customerName": "Mesa de Juan",
		"items": []map[string]interface{}{
			{"productId": milanesa.ID, "quantity": 2},
			{"productId": beer.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, code)

	order := data["order"].(map[string]interface{})
	assert.Equal(t, float64(2*milanesa.PriceCents+beer.PriceCents), order["totalCents"])

	var tickets []map[string]interface{}
	for _, raw := range data["tickets"].([]interface{}) {
		tickets = append(tickets, raw.(map[string]interface{}))
	}
	return uint(order["id"].(float64)), tickets
}

func checkCookingProcessTest(t *testing.T, r *gin.Engine, db *gorm.DB, cook string, orderID uint, tickets []map[string]interface{}) {
	orderStatus := func() models.OrderStatus {
		var o models.Order
		require.NoError(t, db.First(&o, orderID).Error)
		return o.Status
	}
	advance := func(ticket map[string]interface{}, status string) map[string]interface{} {
		path := fmt.Sprintf("/admin/kitchen-tickets/%d/status", uint(ticket["id"].(float64)))
		code, data := call(t, r, http.MethodPut, path, cook, map[string]string{"status": status})
		require.Equal(t, http.StatusOK, code, "%s -> %s", ticket["ticketNumber"], status)
		return data
	}
	kitchen, bar := tickets[0], tickets[1]

	updated := advance(kitchen, "IN_PROGRESS")
	assert.NotNil(t, updated["startedAt"])
	assert.Nil(t, updated["readyAt"])
	assert.Equal(t, models.OrderInPrep, orderStatus())

	updated = advance(kitchen, "READY")
	assert.NotNil(t, updated["readyAt"])
	updated = advance(bar, "READY")
	assert.NotNil(t, updated["startedAt"], "skipped stage is stamped")
	assert.Equal(t, models.OrderReady, orderStatus())

	advance(kitchen, "DELIVERED")
	advance(bar, "DELIVERED")
	assert.Equal(t, models.OrderDelivered, orderStatus())

	code, _ := call(t, r, http.MethodPut, fmt.Sprintf("/admin/kitchen-tickets/%d/status", uint(bar["id"].(float64))), cook, map[string]string{"status": "READY"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func closeSessionTest(t *testing.T, r *gin.Engine, db *gorm.DB, waiter string, sessionID, tableID, orderID uint) {
	code, _ := call(t, r, http.MethodPost, fmt.Sprintf("/admin/tables/%d/request-bill", tableID), waiter, nil)
	require.Equal(t, http.StatusOK, code)

	code, data := call(t, r, http.MethodPost, fmt.Sprintf("/admin/table-sessions/%d/close", sessionID), waiter, map[string]interface{}{
		"paymentMethod": "CASH",
		"tipCents":      500,
	})
	require.Equal(t, http.StatusOK, code)

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, "CLOSED", data["status"])
	assert.Equal(t, "CASH", data["paymentMethod"])
	assert.Equal(t, float64(order.TotalCents+500), data["totalCents"])

	var table models.Table
	require.NoError(t, db.First(&table, tableID).Error)
	assert.Equal(t, models.TableAvailable, table.Status)
}

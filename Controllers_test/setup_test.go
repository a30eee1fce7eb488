package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type testApp struct {
	db     *gorm.DB
	hub    *kds.Hub
	router *gin.Engine
}

// setupTestApp builds the full router over a seeded private sqlite database.
func setupTestApp(t *testing.T) *testApp {
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

	cfg := config.Load()
	cfg.PublicRateLimit = 1000
	cfg.CORSOrigins = []string{"*"}

	hub := kds.NewHub()
	notifier := services.NewNotifier(hub, nil)
	r := router.SetupRouter(router.Deps{
		Config:  cfg,
		DB:      db,
		Hub:     hub,
		Tables:  services.NewTableService(db, notifier, cfg.TableTokenTTL, "http://menu.test"),
		Orders:  services.NewOrderService(db, services.NewTicketRouter(services.DBTicketSequencer{}), notifier),
		Kitchen: services.NewKitchenService(db, notifier),
	})
	return &testApp{db: db, hub: hub, router: r}
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do sends a JSON request; extra headers come as key/value pairs.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func decode(t *testing.T, resp apiResponse, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst), string(resp.Data))
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": database.DemoPassword,
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var data struct {
		Token string `json:"token"`
	}
	decode(t, resp, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (a *testApp) product(t *testing.T, name string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, a.db.Where("name = ?", name).First(&p).Error)
	return p
}

func (a *testApp) firstTable(t *testing.T) models.Table {
	t.Helper()
	var table models.Table
	require.NoError(t, a.db.Order("id ASC").First(&table).Error)
	return table
}

const (
	adminEmail   = "admin@restobar.local"
	waiterEmail  = "waiter@restobar.local"
	kitchenEmail = "kitchen@restobar.local"
)

package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Thiahho/Resto-Bar-sub001/database"
	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/models"
)

// newTestDB opens a private in-memory database on a single connection.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type published struct {
	Event  string
	Topics []string
	Data   interface{}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (r *recordingPublisher) Publish(msg kds.Message, topics ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, published{Event: msg.Event, Topics: topics, Data: msg.Data})
	return 1
}

func (r *recordingPublisher) events(name string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, m := range r.msgs {
		if m.Event == name {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	pub      *recordingPublisher
	tables   *TableService
	orders   *OrderService
	kitchen  *KitchenService
	branch   models.Branch
	table    models.Table
	burger   models.Product
	beer     models.Product
	flan     models.Product
	orphaned models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	notifier := NewNotifier(pub, nil)

	f := &fixture{
		db:      db,
		pub:     pub,
		tables:  NewTableService(db, notifier, 0, "http://menu.test"),
		orders:  NewOrderService(db, NewTicketRouter(DBTicketSequencer{}), notifier),
		kitchen: NewKitchenService(db, notifier),
	}

	f.branch = models.Branch{Name: "Centro"}
	require.NoError(t, db.Create(&f.branch).Error)
	f.table = models.Table{BranchID: f.branch.ID, Name: "Mesa 1", Capacity: 4, Status: models.TableAvailable, IsActive: true}
	require.NoError(t, db.Create(&f.table).Error)

	kitchen := models.Category{BranchID: f.branch.ID, Name: "Cocina", DefaultStation: models.StationKitchen}
	bar := models.Category{BranchID: f.branch.ID, Name: "Bebidas", DefaultStation: models.StationBar}
	desserts := models.Category{BranchID: f.branch.ID, Name: "Postres", DefaultStation: models.StationDesserts}
	require.NoError(t, db.Create(&kitchen).Error)
	require.NoError(t, db.Create(&bar).Error)
	require.NoError(t, db.Create(&desserts).Error)

	f.burger = models.Product{CategoryID: &kitchen.ID, Name: "Hamburguesa", PriceCents: 1000, IsActive: true}
	f.beer = models.Product{CategoryID: &bar.ID, Name: "Cerveza", PriceCents: 500, IsActive: true}
	f.flan = models.Product{CategoryID: &desserts.ID, Name: "Flan", PriceCents: 700, IsActive: true}
	f.orphaned = models.Product{Name: "Pan", PriceCents: 200, IsActive: true}
	for _, p := range []*models.Product{&f.burger, &f.beer, &f.flan, &f.orphaned} {
		require.NoError(t, db.Create(p).Error)
	}
	return f
}

func (f *fixture) openSession(t *testing.T) *models.TableSession {
	t.Helper()
	session, err := f.tables.OpenSession(ctxBG, f.table.ID, OpenSessionInput{GuestCount: 2})
	require.NoError(t, err)
	return session
}

func (f *fixture) reloadTable(t *testing.T) models.Table {
	t.Helper()
	var table models.Table
	require.NoError(t, f.db.First(&table, f.table.ID).Error)
	return table
}

func item(productID uint, qty int) OrderItemInput {
	return OrderItemInput{ProductID: productID, Quantity: qty}
}

func int64p(v int64) *int64 { return &v }

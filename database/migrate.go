package database

import (
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.KitchenTicket{},
		&models.TicketCounter{},
		&models.PushSubscription{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Info("AutoMigrate completed")
	return nil
}

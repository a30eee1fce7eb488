package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// DemoPassword is the password of every seeded staff account.
const DemoPassword = "restobar123"

// SeedDemo fills an empty database with one branch, staff of every role,
// eight tables and a small catalog covering all stations. It does nothing
// when a branch already exists.
func SeedDemo(db *gorm.DB) error {
	var branches int64
	if err := db.Model(&models.Branch{}).Count(&branches).Error; err != nil {
		return err
	}
	if branches > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		branch := models.Branch{Name: "Centro"}
		if err := tx.Create(&branch).Error; err != nil {
			return err
		}

		users := []models.User{
			{Name: "Admin", Email: "admin@restobar.local", Role: models.RoleAdmin},
			{Name: "Mozo", Email: "waiter@restobar.local", Role: models.RoleWaiter, BranchID: &branch.ID},
			{Name: "Cocina", Email: "kitchen@restobar.local", Role: models.RoleKitchen, BranchID: &branch.ID},
		}
		for i := range users {
			users[i].Password = string(hashed)
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		for i := 1; i <= 8; i++ {
			table := models.Table{
				BranchID:  branch.ID,
				Name:      fmt.Sprintf("Mesa %d", i),
				Capacity:  4,
				Status:    models.TableAvailable,
				SortOrder: i,
				IsActive:  true,
			}
			if err := tx.Create(&table).Error; err != nil {
				return err
			}
		}

		catalog := []struct {
			category models.Category
			products []models.Product
		}{
			{models.Category{Name: "Cocina", DefaultStation: models.StationKitchen, SortOrder: 1}, []models.Product{
				{Name: "Milanesa napolitana", PriceCents: 950000},
				{Name: "Empanada de carne", PriceCents: 150000},
			}},
			{models.Category{Name: "Parrilla", DefaultStation: models.StationGrill, SortOrder: 2}, []models.Product{
				{Name: "Bife de chorizo", PriceCents: 1450000},
			}},
			{models.Category{Name: "Bebidas", DefaultStation: models.StationBar, SortOrder: 3}, []models.Product{
				{Name: "Cerveza tirada", PriceCents: 350000},
				{Name: "Fernet con cola", PriceCents: 450000},
			}},
			{models.Category{Name: "Postres", DefaultStation: models.StationDesserts, SortOrder: 4}, []models.Product{
				{Name: "Flan con dulce de leche", PriceCents: 400000},
			}},
		}
		for _, entry := range catalog {
			cat := entry.category
			cat.BranchID = branch.ID
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			for _, p := range entry.products {
				p.CategoryID = &cat.ID
				p.IsActive = true
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			}
		}

		utils.InfoLogger.WithField("branch", branch.Name).Info("demo data seeded")
		return nil
	})
}

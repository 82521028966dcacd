package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"p9e.in/corecut/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250301_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.AccessRequest{}, &models.JobOrder{},
					&models.WorkflowState{}, &models.JobOrderHistory{}, &models.StatusHistory{})
			},
		},
		{
			ID: "20250301_create_field_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Timecard{}, &models.StandbyLog{}, &models.DailyLogEntry{})
			},
		},
		{
			ID: "20250301_create_equipment_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Equipment{}, &models.DamageReport{},
					&models.RepairRequest{}, &models.MaintenanceRecord{}, &models.TurnInRequest{})
			},
		},
	})
	return m.Migrate()
}

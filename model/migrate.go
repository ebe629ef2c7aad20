package model

import "gorm.io/gorm"

var allModels = []any{
	&CombatRecord{},
	&CombatKill{},
}

// AutoMigrate creates or updates the journal tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

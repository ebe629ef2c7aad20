package model

import (
	"time"

	"gorm.io/datatypes"
)

// CombatRecord is one journal line: a combat starting or ending.
type CombatRecord struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string         `gorm:"index:idx_combat_session;size:36;not null" json:"session_id"`
	Event     string         `gorm:"size:32;not null" json:"event"`
	MapID     string         `gorm:"size:64" json:"map_id"`
	ExpPool   int            `json:"exp_pool"`
	Award     int            `json:"award"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"index:idx_combat_created;autoCreateTime:milli" json:"created_at"`
}

// CombatKill is one kill credited to the party when a combat ended.
type CombatKill struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"index:idx_kill_session;size:36;not null" json:"session_id"`
	VictimID  string    `gorm:"size:64;not null" json:"victim_id"`
	KillerID  string    `gorm:"index:idx_kill_killer;size:64;not null" json:"killer_id"`
	Level     int       `json:"level"`
	Exp       int       `json:"exp"`
	CreatedAt time.Time `gorm:"autoCreateTime:milli" json:"created_at"`
}

package model_test

import (
	"testing"

	"github.com/kasuganosora/tilecombat/model"
	"github.com/kasuganosora/tilecombat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := &model.CombatRecord{
		SessionID: "6f1c2b1e-0000-4000-8000-000000000001",
		Event:     "combat_ended",
		MapID:     "arena",
		ExpPool:   120,
		Award:     60,
		Payload:   datatypes.JSON(`{"award":60}`),
	}
	require.NoError(t, db.Create(rec).Error)
	assert.Greater(t, rec.ID, int64(0))
	assert.False(t, rec.CreatedAt.IsZero())

	kill := &model.CombatKill{SessionID: rec.SessionID, VictimID: "orc", KillerID: "hero", Level: 2, Exp: 60}
	require.NoError(t, db.Create(kill).Error)

	var found model.CombatRecord
	require.NoError(t, db.Where("session_id = ?", rec.SessionID).First(&found).Error)
	assert.Equal(t, "arena", found.MapID)
	assert.JSONEq(t, `{"award":60}`, string(found.Payload))

	var kills []model.CombatKill
	require.NoError(t, db.Where("killer_id = ?", "hero").Find(&kills).Error)
	require.Len(t, kills, 1)
	assert.Equal(t, "orc", kills[0].VictimID)
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assert.NoError(t, model.AutoMigrate(db))
}

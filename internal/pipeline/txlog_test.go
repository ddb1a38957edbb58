package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func TestBuildTransactionLog(t *testing.T) {
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s1", at(5, 18), 12345, 0)},
		Purchases: []model.PurchaseEntry{
			{ID: "p1", Timestamp: at(5, 8), Amount: 6480, Source: model.SourcePurchase, Notes: "crystals"},
		},
		Pulls: []model.PullRecord{
			{ID: "a", Banner: model.BannerCharacter, Timestamp: at(5, 10), Rarity: 5},
			{ID: "b", Banner: model.BannerCharacter, Timestamp: at(5, 11), Rarity: 3},
			{ID: "c", Banner: model.BannerStandard, Timestamp: at(5, 11), Rarity: 4},
		},
	}

	log := BuildTransactionLog(ds, testEconomy())
	require.Len(t, log, 3)

	assert.Equal(t, model.LogSnapshot, log[0].Kind)
	assert.Equal(t, "snapshot-s1", log[0].ID)
	assert.Equal(t, "Resource snapshot: 12,345 primogems", log[0].Description)
	assert.False(t, log[0].Editable)

	wishes := log[1]
	assert.Equal(t, model.LogPullSpending, wishes.Kind)
	assert.Equal(t, "wishes-2025-06-06", wishes.ID)
	assert.Equal(t, int64(-320), wishes.Amount)
	assert.Equal(t, "Spent 320 primogems (2 pulls) → 1x 5★", wishes.Description)
	dayRef, ok := wishes.Ref.(model.PullDayRef)
	require.True(t, ok)
	assert.Len(t, dayRef.Pulls, 2)

	purchase := log[2]
	assert.Equal(t, model.LogPurchase, purchase.Kind)
	assert.Equal(t, "Purchased 6,480 primogems", purchase.Description)
	assert.Equal(t, "crystals", purchase.Notes)
	assert.True(t, purchase.Editable)
	_, ok = purchase.Ref.(model.PurchaseRef)
	assert.True(t, ok)
}

func TestBuildTransactionLog_TieOrder(t *testing.T) {
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s", at(6, 12), 100, 0)},
		Purchases: []model.PurchaseEntry{entry("e", at(6, 12), 60, model.SourceDailyCommission)},
		Pulls:     pulls(model.BannerWeapon, at(6, 1), 1, 4),
	}
	log := BuildTransactionLog(ds, testEconomy())
	require.Len(t, log, 3)
	assert.Equal(t, []model.LogKind{model.LogSnapshot, model.LogPurchase, model.LogPullSpending},
		[]model.LogKind{log[0].Kind, log[1].Kind, log[2].Kind})
	assert.Equal(t, "Earned 60 primogems (daily commission)", log[1].Description)
	assert.Equal(t, "Spent 160 primogems (1 pulls) → 1x 4★", log[2].Description)
}

func TestBuildTransactionLog_NegativeEntry(t *testing.T) {
	ds := model.Dataset{
		Purchases: []model.PurchaseEntry{entry("c", at(2, 9), -1680, model.SourceCosmetic)},
	}
	log := BuildTransactionLog(ds, testEconomy())
	require.Len(t, log, 1)
	assert.Equal(t, "Spent 1,680 primogems (cosmetic)", log[0].Description)
}

func TestBuildTransactionLog_Empty(t *testing.T) {
	assert.Empty(t, BuildTransactionLog(model.Dataset{}, testEconomy()))
}

package services

import (
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agencykit/contractd/internal/builder"
	"github.com/agencykit/contractd/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ContractPart{},
		&models.Contract{},
		&models.ContractPartAssociation{},
	))
	return db
}

func seedParts(t *testing.T, db *gorm.DB, titles ...string) []models.ContractPart {
	t.Helper()

	parts := make([]models.ContractPart, 0, len(titles))
	for i, title := range titles {
		part, err := CreateCustomPart(db, title, "<p>"+title+"</p>")
		require.NoError(t, err)
		assert.Equal(t, i, part.SortOrder)
		parts = append(parts, part)
	}
	return parts
}

func associations(t *testing.T, db *gorm.DB, contractID uint64) []models.ContractPartAssociation {
	t.Helper()

	var assocs []models.ContractPartAssociation
	require.NoError(t, db.Where("contract_id = ?", contractID).
		Order("order_index ASC").Find(&assocs).Error)
	return assocs
}

func TestCreateContract(t *testing.T) {
	db := newTestDB(t)

	contract, err := CreateContract(db, "Website Build", "acme")
	require.NoError(t, err)
	assert.NotZero(t, contract.ContractID)
	assert.NotEmpty(t, contract.ExternalID)
	assert.Equal(t, "draft", contract.Status)
	assert.Empty(t, contract.Content)
}

func TestGetContractNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetContract(db, "no-such-id")
	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
}

func TestSaveContractNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := SaveContract(db, "no-such-id", "t", "c", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
}

func TestSaveContractCreatesAssociations(t *testing.T) {
	db := newTestDB(t)
	parts := seedParts(t, db, "Introduction", "Scope of Work")
	contract, err := CreateContract(db, "Website Build", "acme")
	require.NoError(t, err)

	desired := []builder.Part{
		{PartID: parts[0].PartID, Title: "Introduction", Content: "<p>hello</p>", OrderIndex: 0},
		{PartID: parts[1].PartID, Title: "Scope of Work", Content: "<p>scope</p>", OrderIndex: 1},
	}
	affected, err := SaveContract(db, contract.ExternalID, "Website Build v2", "<div>compiled</div>", nil, desired)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	saved, err := GetContract(db, contract.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, "Website Build v2", saved.Title)
	assert.Equal(t, "<div>compiled</div>", saved.Content)

	assocs := associations(t, db, contract.ContractID)
	require.Len(t, assocs, 2)
	assert.Equal(t, parts[0].PartID, assocs[0].ContractPartID)
	assert.Equal(t, parts[1].PartID, assocs[1].ContractPartID)

	// Part edits land on the library rows.
	var stored models.ContractPart
	require.NoError(t, db.First(&stored, parts[0].PartID).Error)
	assert.Equal(t, "<p>hello</p>", stored.Content)
}

func TestSaveContractReordersWithoutCollision(t *testing.T) {
	db := newTestDB(t)
	parts := seedParts(t, db, "A", "B", "C")
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	initial := []builder.Part{
		{PartID: parts[0].PartID, Title: "A", OrderIndex: 0},
		{PartID: parts[1].PartID, Title: "B", OrderIndex: 1},
		{PartID: parts[2].PartID, Title: "C", OrderIndex: 2},
	}
	_, err = SaveContract(db, contract.ExternalID, "c", "", nil, initial)
	require.NoError(t, err)

	// Full rotation: every row changes order_index. The unique
	// (contract_id, order_index) index must not trip mid-update.
	rotated := []builder.Part{
		{PartID: parts[2].PartID, Title: "C", OrderIndex: 0},
		{PartID: parts[0].PartID, Title: "A", OrderIndex: 1},
		{PartID: parts[1].PartID, Title: "B", OrderIndex: 2},
	}
	affected, err := SaveContract(db, contract.ExternalID, "c", "", nil, rotated)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	assocs := associations(t, db, contract.ContractID)
	require.Len(t, assocs, 3)
	assert.Equal(t, parts[2].PartID, assocs[0].ContractPartID)
	assert.Equal(t, parts[0].PartID, assocs[1].ContractPartID)
	assert.Equal(t, parts[1].PartID, assocs[2].ContractPartID)
	for i, assoc := range assocs {
		assert.Equal(t, i, assoc.OrderIndex)
	}
}

func TestSaveContractRemovesDetachedParts(t *testing.T) {
	db := newTestDB(t)
	parts := seedParts(t, db, "A", "B")
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	both := []builder.Part{
		{PartID: parts[0].PartID, Title: "A", OrderIndex: 0},
		{PartID: parts[1].PartID, Title: "B", OrderIndex: 1},
	}
	_, err = SaveContract(db, contract.ExternalID, "c", "", nil, both)
	require.NoError(t, err)

	only := []builder.Part{{PartID: parts[1].PartID, Title: "B", OrderIndex: 0}}
	affected, err := SaveContract(db, contract.ExternalID, "c", "", nil, only)
	require.NoError(t, err)
	// One delete plus one reorder.
	assert.Equal(t, int64(2), affected)

	assocs := associations(t, db, contract.ContractID)
	require.Len(t, assocs, 1)
	assert.Equal(t, parts[1].PartID, assocs[0].ContractPartID)
	assert.Equal(t, 0, assocs[0].OrderIndex)

	// The library row itself survives detachment.
	var count int64
	require.NoError(t, db.Model(&models.ContractPart{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSaveContractCreatesCustomParts(t *testing.T) {
	db := newTestDB(t)
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	desired := []builder.Part{
		{Title: "My Custom Clause", Content: "<p>custom</p>", OrderIndex: 0},
	}
	affected, err := SaveContract(db, contract.ExternalID, "c", "", nil, desired)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	saved, err := GetContract(db, contract.ExternalID)
	require.NoError(t, err)
	loaded := PartsFromContract(saved)
	require.Len(t, loaded, 1)
	assert.NotZero(t, loaded[0].PartID)
	assert.NotEmpty(t, loaded[0].ExternalID)
	assert.Equal(t, "My Custom Clause", loaded[0].Title)

	var stored models.ContractPart
	require.NoError(t, db.First(&stored, loaded[0].PartID).Error)
	assert.True(t, stored.IsCustom)
}

func TestSaveContractStoresSnapshot(t *testing.T) {
	db := newTestDB(t)
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	snapshot := []byte(`{"contractData":{"client_name":"Acme"}}`)
	_, err = SaveContract(db, contract.ExternalID, "c", "", snapshot, nil)
	require.NoError(t, err)

	saved, err := GetContract(db, contract.ExternalID)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(saved.Data.JSON), &decoded))
	assert.Contains(t, decoded, "contractData")
}

func TestSaveContractIdempotentResave(t *testing.T) {
	db := newTestDB(t)
	parts := seedParts(t, db, "A", "B")
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	desired := []builder.Part{
		{PartID: parts[0].PartID, Title: "A", OrderIndex: 0},
		{PartID: parts[1].PartID, Title: "B", OrderIndex: 1},
	}
	_, err = SaveContract(db, contract.ExternalID, "c", "", nil, desired)
	require.NoError(t, err)

	affected, err := SaveContract(db, contract.ExternalID, "c", "", nil, desired)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.Len(t, associations(t, db, contract.ContractID), 2)
}

func TestPartsFromContractPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	parts := seedParts(t, db, "A", "B", "C")
	contract, err := CreateContract(db, "c", "acme")
	require.NoError(t, err)

	desired := []builder.Part{
		{PartID: parts[1].PartID, Title: "B", OrderIndex: 0},
		{PartID: parts[2].PartID, Title: "C", OrderIndex: 1},
		{PartID: parts[0].PartID, Title: "A", OrderIndex: 2},
	}
	_, err = SaveContract(db, contract.ExternalID, "c", "", nil, desired)
	require.NoError(t, err)

	saved, err := GetContract(db, contract.ExternalID)
	require.NoError(t, err)
	loaded := PartsFromContract(saved)
	require.Len(t, loaded, 3)
	assert.Equal(t, "B", loaded[0].Title)
	assert.Equal(t, "C", loaded[1].Title)
	assert.Equal(t, "A", loaded[2].Title)
}

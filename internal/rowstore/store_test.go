package rowstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/common"
)

func sampleRows() []map[string]string {
	return []map[string]string{
		{"Potential Name": "Globex Expansion", "Amount": "12000", "Sales Stage": "Prospecting"},
		{"Potential Name": "Initech Pilot", "Amount": "", "Sales Stage": "Qualification"},
		{"Potential Name": "Umbrella Renewal", "Amount": "4500", "Sales Stage": "Prospecting"},
	}
}

func TestIngest_AssignsPositionalIDs(t *testing.T) {
	store := Ingest(sampleRows())

	require.Equal(t, 3, store.Len())
	for i, row := range store.Rows() {
		assert.Equal(t, i, row.ID)
		assert.Equal(t, []string{"0", "1", "2"}[i], row.Get(IDKey))
	}

	row, ok := store.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "Umbrella Renewal", row.Get("Potential Name"))

	_, ok = store.Lookup(3)
	assert.False(t, ok)
}

func TestIngest_DoesNotAliasInput(t *testing.T) {
	raw := sampleRows()
	store := Ingest(raw)

	raw[0]["Amount"] = "changed"

	row, ok := store.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, "12000", row.Get("Amount"))
	assert.NotContains(t, raw[0], IDKey)
}

func TestIngest_OverwritesReservedColumn(t *testing.T) {
	store := Ingest([]map[string]string{{IDKey: "99", "Name": "a"}})

	row, ok := store.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, "0", row.Get(IDKey))
	_, ok = store.Lookup(99)
	assert.False(t, ok)
}

func TestStore_Columns(t *testing.T) {
	t.Run("sorted first-seen without header", func(t *testing.T) {
		store := Ingest(sampleRows())
		assert.Equal(t, []string{"Amount", "Potential Name", "Sales Stage"}, store.Columns())
	})

	t.Run("header order wins", func(t *testing.T) {
		header := []string{"Potential Name", "Sales Stage", "Amount"}
		store := IngestWithHeader(header, sampleRows())
		assert.Equal(t, header, store.Columns())
		assert.NotContains(t, store.Columns(), IDKey)
	})
}

func TestStore_InsertFront(t *testing.T) {
	store := Ingest(sampleRows())

	err := store.InsertFront(map[string]string{"dealName": "Acme Renewal", "source": "Created from Transcript"}, -1)
	require.NoError(t, err)

	require.Equal(t, 4, store.Len())
	first := store.Rows()[0]
	assert.Equal(t, -1, first.ID)
	assert.Equal(t, "-1", first.Get(IDKey))
	assert.Equal(t, "Created from Transcript", first.Get("source"))

	// Existing rows are untouched and still reachable by id.
	for id := 0; id < 3; id++ {
		row, ok := store.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, id, row.ID)
	}
	assert.Contains(t, store.Columns(), "source")

	err = store.InsertFront(map[string]string{"dealName": "dup"}, 1)
	require.ErrorIs(t, err, common.ErrDuplicateRowID)
	assert.Equal(t, 4, store.Len())
}

func TestStore_Detail(t *testing.T) {
	store := Ingest(sampleRows())

	found := store.Detail(1)
	assert.Equal(t, "Initech Pilot", found.Get("Potential Name"))

	missing := store.Detail(42)
	assert.Equal(t, 42, missing.ID)
	assert.Equal(t, "Could not find original data for row ID 42", missing.Get(MissingKey))
}

func TestRow_DisplayHidesReservedColumn(t *testing.T) {
	store := Ingest(sampleRows())
	row, _ := store.Lookup(0)

	for _, kv := range row.Display() {
		assert.NotEqual(t, IDKey, kv[0])
	}
	assert.Len(t, row.Display(), 3)
}

func TestStore_CSV(t *testing.T) {
	store := IngestWithHeader([]string{"Potential Name", "Amount"}, []map[string]string{
		{"Potential Name": `Says "hi"`, "Amount": "1,000"},
	})

	text, err := store.CSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "__AI_ROW_ID__,Potential Name,Amount", lines[0])
	assert.Equal(t, `0,"Says ""hi""","1,000"`, lines[1])
}

func TestNilStore(t *testing.T) {
	var store *Store
	assert.Equal(t, 0, store.Len())
	assert.Nil(t, store.Rows())
	_, ok := store.Lookup(0)
	assert.False(t, ok)
	assert.Equal(t, "Could not find original data for row ID 0", store.Detail(0).Get(MissingKey))
}

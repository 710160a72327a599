package sheets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
	"igtracker/pkg/tracker"
)

// fakeValues implements valuesAPI in memory. Rows live per sheet name;
// range strings are interpreted just enough for the store's access patterns.
type fakeValues struct {
	sheets map[string][][]interface{}

	getErr    error
	appendErr error
	updateErr error

	appendCalls int
	lastMode    string
}

func newFakeValues() *fakeValues {
	return &fakeValues{sheets: make(map[string][][]interface{})}
}

func sheetName(rangeStr string) string {
	for i, c := range rangeStr {
		if c == '!' {
			return rangeStr[:i]
		}
	}
	return rangeStr
}

func (f *fakeValues) Get(_, readRange string) ([][]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rows := f.sheets[sheetName(readRange)]
	// A1-row probe returns at most the first row
	if len(rows) > 0 && containsRowOne(readRange) {
		return rows[:1], nil
	}
	return rows, nil
}

func containsRowOne(rangeStr string) bool {
	for i := 0; i+1 < len(rangeStr); i++ {
		if rangeStr[i] == 'A' && rangeStr[i+1] == '1' {
			return true
		}
	}
	return false
}

func (f *fakeValues) Append(_, writeRange string, values [][]interface{}, valueInputOption string) error {
	f.appendCalls++
	f.lastMode = valueInputOption
	if f.appendErr != nil {
		return f.appendErr
	}
	name := sheetName(writeRange)
	f.sheets[name] = append(f.sheets[name], values...)
	return nil
}

func (f *fakeValues) Update(_, writeRange string, values [][]interface{}, valueInputOption string) error {
	f.lastMode = valueInputOption
	if f.updateErr != nil {
		return f.updateErr
	}
	name := sheetName(writeRange)
	var rowIndex int
	if _, err := fmt.Sscanf(writeRange, name+"!A%d", &rowIndex); err != nil {
		return err
	}
	f.sheets[name][rowIndex-1] = values[0]
	return nil
}

func (f *fakeValues) Clear(_, clearRange string) error {
	delete(f.sheets, sheetName(clearRange))
	return nil
}

func newTestStore(api *fakeValues) *Store {
	cfg := &config.SheetsConfig{
		SpreadsheetID: "sheet-id",
		DataSheet:     "Posts",
		URLSheet:      "Urls",
		SchemaVersion: config.SchemaVersionCurrent,
		WriteMode:     config.WriteModeUserEntered,
	}
	return NewStore(cfg, api, logger.NewTestLogger())
}

func record(url, fecha string) tracker.Record {
	return tracker.Record{
		Fecha:          fecha,
		InputURL:       url,
		Caption:        "caption",
		OwnerUsername:  "someone",
		CommentsCount:  3,
		VideoViewCount: 10,
		VideoPlayCount: 12,
		ImageURL:       "https://cdn.example.com/posts/img.jpg",
		Timestamp:      "2024-01-01T00:00:00.000Z",
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	api := newFakeValues()
	store := newTestStore(api)

	n, err := store.Append([]tracker.Record{record("https://instagram.com/p/AAA", "2024-01-01")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := api.sheets["Posts"]
	require.Len(t, rows, 2)
	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "Posteado en", rows[0][8])
	assert.Equal(t, "https://instagram.com/p/AAA", rows[1][1])
	assert.Equal(t, config.WriteModeUserEntered, api.lastMode)

	// Second append must not repeat the header
	_, err = store.Append([]tracker.Record{record("https://instagram.com/p/BBB", "2024-01-01")})
	require.NoError(t, err)
	rows = api.sheets["Posts"]
	require.Len(t, rows, 3)
	assert.Equal(t, "https://instagram.com/p/BBB", rows[2][1])
}

func TestAppendLegacySchemaDropsTimestampColumn(t *testing.T) {
	api := newFakeValues()
	store := newTestStore(api)
	store.schemaVersion = config.SchemaVersionLegacy

	_, err := store.Append([]tracker.Record{record("https://instagram.com/p/AAA", "2024-01-01")})
	require.NoError(t, err)

	rows := api.sheets["Posts"]
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 8)
	assert.Len(t, rows[1], 8)
	assert.Equal(t, "Imagen", rows[0][7])
}

func TestFindLatestByKeyReturnsHighestMatch(t *testing.T) {
	api := newFakeValues()
	api.sheets["Posts"] = [][]interface{}{
		{"Fecha", "URL", "Caption", "Usuario", "Comentarios", "Vistas", "Reproducciones", "Imagen", "Posteado en"},
		{"2023-12-30", "https://instagram.com/p/AAA", "", "", 0, 0, 0, "img-1", ""},
		{"2023-12-31", "https://instagram.com/p/BBB", "", "", 0, 0, 0, "img-b", ""},
		{"2023-12-31", "https://instagram.com/p/AAA", "", "", 0, 0, 0, "img-2", ""},
		{"2024-01-01", "https://instagram.com/p/AAA", "", "", 0, 0, 0, "img-3", ""},
	}
	store := newTestStore(api)

	ref, err := store.FindLatestByKey("https://instagram.com/p/AAA")
	require.NoError(t, err)
	require.NotNil(t, ref)

	assert.Equal(t, 5, ref.RowIndex, "1-based position of the last match")
	assert.Equal(t, "2024-01-01", ref.Fecha)
	assert.Equal(t, "img-3", ref.ImageURL)
}

func TestFindLatestByKeyUnknownURL(t *testing.T) {
	api := newFakeValues()
	api.sheets["Posts"] = [][]interface{}{
		{"Fecha", "URL", "Caption", "Usuario", "Comentarios", "Vistas", "Reproducciones", "Imagen", "Posteado en"},
		{"2024-01-01", "https://instagram.com/p/AAA", "", "", 0, 0, 0, "img", ""},
	}
	store := newTestStore(api)

	ref, err := store.FindLatestByKey("https://instagram.com/p/ZZZ")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestFindLatestByKeySkipsHeaderSentinel(t *testing.T) {
	api := newFakeValues()
	// A data row whose URL cell collides with the lookup would be row 1
	// only if the header were not skipped
	api.sheets["Posts"] = [][]interface{}{
		{"FECHA", "URL", "Caption"},
		{"2024-01-01", "https://instagram.com/p/AAA", "", "", 0, 0, 0, "img", ""},
	}
	store := newTestStore(api)

	ref, err := store.FindLatestByKey("https://instagram.com/p/AAA")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, 2, ref.RowIndex)
}

func TestFindLatestByKeyReadError(t *testing.T) {
	api := newFakeValues()
	api.getErr = errors.New("transport closed")
	store := newTestStore(api)

	_, err := store.FindLatestByKey("https://instagram.com/p/AAA")
	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeLookup, typed.Type)
}

func TestUpdateAtOverwritesRow(t *testing.T) {
	api := newFakeValues()
	api.sheets["Posts"] = [][]interface{}{
		{"Fecha", "URL", "Caption", "Usuario", "Comentarios", "Vistas", "Reproducciones", "Imagen", "Posteado en"},
		{"2024-01-01", "https://instagram.com/p/AAA", "old", "", 0, 0, 0, "img", ""},
	}
	store := newTestStore(api)

	updated := record("https://instagram.com/p/AAA", "2024-01-01")
	updated.Caption = "new caption"
	require.NoError(t, store.UpdateAt(2, updated))

	row := api.sheets["Posts"][1]
	assert.Equal(t, "new caption", row[2])
	assert.Equal(t, "https://instagram.com/p/AAA", row[1])
}

func TestAppendErrorIsPersist(t *testing.T) {
	api := newFakeValues()
	api.appendErr = errors.New("quota exceeded")
	store := newTestStore(api)

	_, err := store.Append([]tracker.Record{record("https://instagram.com/p/AAA", "2024-01-01")})
	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypePersist, typed.Type)
}

func TestClearWipesDataSheet(t *testing.T) {
	api := newFakeValues()
	store := newTestStore(api)

	_, err := store.Append([]tracker.Record{record("https://instagram.com/p/AAA", "2024-01-01")})
	require.NoError(t, err)
	require.NotEmpty(t, api.sheets["Posts"])

	require.NoError(t, store.Clear())
	assert.Empty(t, api.sheets["Posts"])

	// Next append starts over with a fresh header
	_, err = store.Append([]tracker.Record{record("https://instagram.com/p/BBB", "2024-01-02")})
	require.NoError(t, err)
	assert.Equal(t, "Fecha", api.sheets["Posts"][0][0])
}

func TestReadURLColumn(t *testing.T) {
	api := newFakeValues()
	api.sheets["Urls"] = [][]interface{}{
		{"url"},
		{"https://instagram.com/p/AAA"},
		{},
		{"https://instagram.com/reel/BBB"},
	}
	store := newTestStore(api)

	cells, err := store.ReadURLColumn()
	require.NoError(t, err)
	assert.Equal(t, []string{"url", "https://instagram.com/p/AAA", "", "https://instagram.com/reel/BBB"}, cells)
}

package sheets

import (
	"fmt"
	"strings"

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
	"igtracker/pkg/tracker"
)

// headerRow is written once, the first time the data sheet receives rows.
var headerRow = []string{
	"Fecha", "URL", "Caption", "Usuario", "Comentarios",
	"Vistas", "Reproducciones", "Imagen", "Posteado en",
}

// valuesAPI is the slice of the spreadsheet values surface the store needs.
// The production implementation is backed by the Google Sheets service;
// tests swap in an in-memory fake.
type valuesAPI interface {
	Get(spreadsheetID, readRange string) ([][]interface{}, error)
	Append(spreadsheetID, writeRange string, values [][]interface{}, valueInputOption string) error
	Update(spreadsheetID, writeRange string, values [][]interface{}, valueInputOption string) error
	Clear(spreadsheetID, clearRange string) error
}

// Store persists post records to a spreadsheet, one row per record.
// It implements tracker.RecordStore.
type Store struct {
	api           valuesAPI
	spreadsheetID string
	dataSheet     string
	urlSheet      string
	schemaVersion int
	writeMode     string
	logger        logger.Logger
}

func NewStore(cfg *config.SheetsConfig, api valuesAPI, log logger.Logger) *Store {
	return &Store{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
		dataSheet:     cfg.DataSheet,
		urlSheet:      cfg.URLSheet,
		schemaVersion: cfg.SchemaVersion,
		writeMode:     cfg.WriteMode,
		logger:        log,
	}
}

// lastColumn is the rightmost column letter of the active schema
func (s *Store) lastColumn() string {
	if s.schemaVersion == config.SchemaVersionLegacy {
		return "H"
	}
	return "I"
}

func (s *Store) dataRange() string {
	return fmt.Sprintf("%s!A:%s", s.dataSheet, s.lastColumn())
}

// FindLatestByKey returns the highest-index row whose URL column matches,
// or nil when the URL has never been recorded. Row indices are 1-based
// sheet positions, usable directly in an update range.
func (s *Store) FindLatestByKey(url string) (*tracker.RowRef, error) {
	rows, err := s.api.Get(s.spreadsheetID, s.dataRange())
	if err != nil {
		return nil, errs.New(errs.ErrorTypeLookup, "failed to read %s: %v", s.dataRange(), err)
	}

	var ref *tracker.RowRef
	for i, row := range rows {
		if i == 0 && strings.EqualFold(cellString(row, 0), "fecha") {
			continue
		}
		if cellString(row, 1) != url {
			continue
		}
		ref = &tracker.RowRef{
			RowIndex: i + 1,
			Fecha:    cellString(row, 0),
			ImageURL: cellString(row, 7),
		}
	}
	return ref, nil
}

// Append adds one row per record at the bottom of the data sheet, writing
// the header first if the sheet is still empty. It returns the number of
// rows written.
func (s *Store) Append(records []tracker.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	values := make([][]interface{}, 0, len(records)+1)

	empty, err := s.sheetEmpty()
	if err != nil {
		return 0, err
	}
	if empty {
		values = append(values, s.headerValues())
	}

	for _, rec := range records {
		values = append(values, s.rowValues(rec))
	}

	if err := s.api.Append(s.spreadsheetID, s.dataRange(), values, s.writeMode); err != nil {
		return 0, errs.New(errs.ErrorTypePersist, "failed to append %d rows: %v", len(records), err)
	}

	s.logger.DebugWithFields("appended rows", map[string]interface{}{
		"sheet": s.dataSheet,
		"rows":  len(records),
	})
	return len(records), nil
}

// UpdateAt overwrites the row at the given 1-based sheet position
func (s *Store) UpdateAt(rowIndex int, record tracker.Record) error {
	writeRange := fmt.Sprintf("%s!A%d:%s%d", s.dataSheet, rowIndex, s.lastColumn(), rowIndex)
	values := [][]interface{}{s.rowValues(record)}

	if err := s.api.Update(s.spreadsheetID, writeRange, values, s.writeMode); err != nil {
		return errs.New(errs.ErrorTypePersist, "failed to update %s: %v", writeRange, err)
	}
	return nil
}

// ReadURLColumn returns the raw cell values of the URL sheet's first column
func (s *Store) ReadURLColumn() ([]string, error) {
	readRange := fmt.Sprintf("%s!A:A", s.urlSheet)
	rows, err := s.api.Get(s.spreadsheetID, readRange)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeLookup, "failed to read %s: %v", readRange, err)
	}

	cells := make([]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, cellString(row, 0))
	}
	return cells, nil
}

// Clear wipes the data sheet including the header
func (s *Store) Clear() error {
	if err := s.api.Clear(s.spreadsheetID, s.dataRange()); err != nil {
		return errs.New(errs.ErrorTypePersist, "failed to clear %s: %v", s.dataSheet, err)
	}
	return nil
}

func (s *Store) sheetEmpty() (bool, error) {
	probe := fmt.Sprintf("%s!A1:%s1", s.dataSheet, s.lastColumn())
	rows, err := s.api.Get(s.spreadsheetID, probe)
	if err != nil {
		return false, errs.New(errs.ErrorTypeLookup, "failed to probe %s: %v", probe, err)
	}
	return len(rows) == 0, nil
}

func (s *Store) headerValues() []interface{} {
	cols := headerRow
	if s.schemaVersion == config.SchemaVersionLegacy {
		cols = headerRow[:8]
	}
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func (s *Store) rowValues(rec tracker.Record) []interface{} {
	row := []interface{}{
		rec.Fecha,
		rec.InputURL,
		rec.Caption,
		rec.OwnerUsername,
		rec.CommentsCount,
		rec.VideoViewCount,
		rec.VideoPlayCount,
		rec.ImageURL,
	}
	if s.schemaVersion != config.SchemaVersionLegacy {
		row = append(row, rec.Timestamp)
	}
	return row
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[idx])
}

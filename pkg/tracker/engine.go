package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"igtracker/pkg/apify"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
)

const (
	stampLayout    = "2006-01-02 15:04:05"
	dateOnlyLayout = "2006-01-02"
)

// layouts tried when a stored fecha carries a time component
var fechaLayouts = []string{
	stampLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// EffectKind is the outcome of reconciling one scraped item
type EffectKind string

const (
	// EffectSkip rejects the item (empty key), no row is touched
	EffectSkip EffectKind = "skip"
	// EffectAppend adds a new row for the item
	EffectAppend EffectKind = "append"
	// EffectUpdate overwrites the item's existing row for today
	EffectUpdate EffectKind = "update"
)

// Effect is the single decision the engine produces per item
type Effect struct {
	Kind     EffectKind
	Record   Record
	RowIndex int
}

// RunOptions controls per-run behavior of the engine
type RunOptions struct {
	// DateOnly stamps fecha as a bare calendar date instead of a full
	// datetime (the web form entry point does this)
	DateOnly bool
}

// Report is the outcome of a batch run. Records carries every row the run
// produced (appended first, then updated), which entry points return to
// the caller. When Run also returns an error, Report still describes the
// attempted batch so the caller can surface partial effects.
type Report struct {
	Appended int      `json:"appended"`
	Updated  int      `json:"updated"`
	Records  []Record `json:"records"`
}

// Engine decides, for each scraped item, whether it is a new row, an
// update of today's row, or a new row inheriting a previously uploaded
// image. It is the only component with reconciliation state logic;
// everything around it is I/O plumbing.
type Engine struct {
	store    RecordStore
	uploader BlobUploader
	now      func() time.Time
	logger   logger.Logger
}

// NewEngine creates a reconciliation engine
func NewEngine(store RecordStore, uploader BlobUploader, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		store:    store,
		uploader: uploader,
		now:      time.Now,
		logger:   log,
	}
}

// SetClock replaces the engine's time source (used by tests)
func (e *Engine) SetClock(fn func() time.Time) {
	e.now = fn
}

// Reconcile maps one scraped item to exactly one effect, consulting the
// store for an existing row and the uploader for image persistence.
//
// Images are fetched on first sighting of a URL only: once any row exists
// for the URL its image URL is carried forward, even when the new item
// points at a different display URL.
//
// A connection error from the uploader is returned instead of an effect:
// the image host being unreachable affects every first sighting in the
// batch, and a row written without its image now would never get one.
func (e *Engine) Reconcile(item apify.Item, now time.Time, dateOnly bool) (Effect, error) {
	if item.InputURL == "" {
		return Effect{Kind: EffectSkip}, nil
	}

	log := e.logger.WithField("input_url", item.InputURL)

	existing, err := e.store.FindLatestByKey(item.InputURL)
	if err != nil {
		// A failed lookup degrades to append-as-new; it never blocks the run
		log.WithError(err).Error("record lookup failed, treating URL as new")
		existing = nil
	}

	imageURL := ""
	if existing != nil {
		imageURL = existing.ImageURL
		log.WithField("row_index", existing.RowIndex).Debug("URL already stored, reusing image")
	} else if item.DisplayURL != "" {
		name := e.imageName(item.ShortCode, now)
		uploaded, err := e.uploader.UploadFromSource(item.DisplayURL, name)
		if err != nil {
			var typed *errs.Error
			if errors.As(err, &typed) && typed.Type == errs.ErrorTypeConnection {
				return Effect{}, err
			}
			// Non-fatal: the row is still written, with an empty image field
			log.WithError(err).Warn("image upload failed, continuing without image")
		} else {
			imageURL = uploaded
			log.WithField("image_url", imageURL).Info("image uploaded")
		}
	}

	record := NewRecord(item, e.stamp(now, dateOnly), imageURL)

	if existing != nil && SameDay(existing.Fecha, now) {
		return Effect{Kind: EffectUpdate, Record: record, RowIndex: existing.RowIndex}, nil
	}

	return Effect{Kind: EffectAppend, Record: record}, nil
}

// Run reconciles a whole batch sequentially. Updates are applied
// immediately at their row position; appends are collected and flushed once
// at the end, preserving the order items were first seen in the run.
//
// A failed flush is fatal to the run: the error is returned together with
// the report of the attempted batch, since updates already applied are not
// rolled back. An unreachable image host aborts the run before any pending
// append is flushed; the report then covers only the updates already applied.
func (e *Engine) Run(items []apify.Item, opts RunOptions) (*Report, error) {
	now := e.now()

	var pending []Record
	var updated []Record

	for _, item := range items {
		effect, err := e.Reconcile(item, now, opts.DateOnly)
		if err != nil {
			return buildReport(nil, updated), err
		}
		switch effect.Kind {
		case EffectSkip:
			continue

		case EffectUpdate:
			if err := e.store.UpdateAt(effect.RowIndex, effect.Record); err != nil {
				report := buildReport(pending, updated)
				return report, errs.New(errs.ErrorTypePersist,
					"failed to update row %d for %s: %v", effect.RowIndex, effect.Record.InputURL, err)
			}
			updated = append(updated, effect.Record)
			e.logger.WithFields(map[string]interface{}{
				"input_url": effect.Record.InputURL,
				"row_index": effect.RowIndex,
			}).Info("row updated in place")

		case EffectAppend:
			pending = append(pending, effect.Record)
		}
	}

	report := buildReport(pending, updated)

	if len(pending) > 0 {
		if _, err := e.store.Append(pending); err != nil {
			return report, errs.New(errs.ErrorTypePersist, "failed to append %d rows: %v", len(pending), err)
		}
	}

	e.logger.InfoWithFields("run completed", map[string]interface{}{
		"rows_appended": report.Appended,
		"rows_updated":  report.Updated,
		"total":         report.Appended + report.Updated,
	})
	return report, nil
}

func buildReport(pending, updated []Record) *Report {
	records := make([]Record, 0, len(pending)+len(updated))
	records = append(records, pending...)
	records = append(records, updated...)
	return &Report{
		Appended: len(pending),
		Updated:  len(updated),
		Records:  records,
	}
}

// stamp formats the write timestamp for fecha
func (e *Engine) stamp(now time.Time, dateOnly bool) string {
	if dateOnly {
		return now.Format(dateOnlyLayout)
	}
	return now.Format(stampLayout)
}

// imageName generates the destination filename for an uploaded image. The
// short code keeps names recognizable; a generated token stands in when
// the actor did not report one.
func (e *Engine) imageName(shortCode string, now time.Time) string {
	if shortCode == "" {
		shortCode = strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	}
	return fmt.Sprintf("%s_%d.jpg", shortCode, now.Unix())
}

// SameDay reports whether a stored fecha falls on the same civil calendar
// date as now, in local time. A 10-character date-only value is compared
// as a string without time parsing. An unparseable fecha is conservatively
// treated as a different day, which forces an append instead of silently
// overwriting history.
func SameDay(fecha string, now time.Time) bool {
	fecha = strings.TrimSpace(fecha)
	if fecha == "" {
		return false
	}

	today := now.Format(dateOnlyLayout)

	if len(fecha) == 10 && !strings.Contains(fecha, ":") {
		return fecha == today
	}

	for _, layout := range fechaLayouts {
		if t, err := time.ParseInLocation(layout, fecha, now.Location()); err == nil {
			return t.Format(dateOnlyLayout) == today
		}
	}

	return false
}

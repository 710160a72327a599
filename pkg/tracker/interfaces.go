package tracker

import "igtracker/pkg/apify"

// RecordStore is the spreadsheet-backed row store the engine reconciles
// against. The key is not unique in storage: one URL may own one row per
// calendar day it was seen. FindLatestByKey resolves to the row with the
// highest index among matches.
type RecordStore interface {
	// FindLatestByKey returns the most recent row for the URL, or nil if
	// the URL has never been stored
	FindLatestByKey(url string) (*RowRef, error)

	// Append adds rows at the end of the sheet, prefixing a header row
	// exactly once if the sheet has none. Returns the number of data rows
	// written.
	Append(records []Record) (int, error)

	// UpdateAt overwrites the full row at the given 1-based index
	UpdateAt(rowIndex int, record Record) error
}

// BlobUploader stores an image fetched from a source URL under a
// destination name and returns its public URL. The engine calls it at most
// once per decided upload; the uploader itself gives no exactly-once
// guarantee.
type BlobUploader interface {
	UploadFromSource(sourceURL, destinationName string) (string, error)
}

// JobRunner submits a batch of post URLs to the scraping actor and blocks
// until the result items are available
type JobRunner interface {
	Scrape(urls []string) ([]apify.Item, error)
}

package tracker

import "igtracker/pkg/apify"

// Record is one persisted spreadsheet row: the latest known state of a
// scraped post for a given day. Fecha always reflects the time of the write
// that produced the row, not the original post time; the source-reported
// post time travels in Timestamp.
type Record struct {
	Fecha          string `json:"fecha"`
	InputURL       string `json:"inputUrl"`
	Caption        string `json:"caption"`
	OwnerUsername  string `json:"ownerUsername"`
	CommentsCount  int    `json:"commentsCount"`
	VideoViewCount int    `json:"videoViewCount"`
	VideoPlayCount int    `json:"videoPlayCount"`
	ImageURL       string `json:"imageUrl"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// NewRecord builds a Record from a scraped item with the given write stamp
// and resolved image URL
func NewRecord(item apify.Item, fecha, imageURL string) Record {
	return Record{
		Fecha:          fecha,
		InputURL:       item.InputURL,
		Caption:        item.Caption,
		OwnerUsername:  item.OwnerUsername,
		CommentsCount:  item.CommentsCount,
		VideoViewCount: item.VideoViewCount,
		VideoPlayCount: item.VideoPlayCount,
		ImageURL:       imageURL,
		Timestamp:      item.Timestamp,
	}
}

// RowRef points at an existing row for a URL: a transient 1-based position
// plus the two stored fields reconciliation needs. RowIndex is re-derived
// on every lookup, it is never persisted.
type RowRef struct {
	RowIndex int
	Fecha    string
	ImageURL string
}

package models

import (
	"database/sql"
	"time"
)

// WatchedPage is a registered page the scheduler re-extracts on a cadence.
// The last_* columns hold the fields of the most recent successful pass.
type WatchedPage struct {
	ID              int            `json:"id"`
	URL             string         `json:"url"`
	Label           sql.NullString `json:"label"`
	LastTitle       sql.NullString `json:"last_title"`
	LastSKU         sql.NullString `json:"last_sku"`
	LastAmount      sql.NullString `json:"last_amount"`
	LastCurrency    sql.NullString `json:"last_currency"`
	LastFingerprint sql.NullString `json:"last_fingerprint"`
	LastConfidence  int            `json:"last_confidence"`
	LastChecked     sql.NullTime   `json:"last_checked"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	IsActive        bool           `json:"is_active"`
}

// HasResult reports whether at least one extraction pass has completed.
func (w *WatchedPage) HasResult() bool {
	return w.LastFingerprint.Valid && w.LastFingerprint.String != ""
}

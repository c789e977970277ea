package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ScanEvent is one physical barcode submission. Rows are immutable once
// written and are never rolled back by enrichment failures; ScanCount on the
// corresponding Book always equals the number of ScanEvent rows for its ISBN.
type ScanEvent struct {
	bun.BaseModel `bun:"table:scan_events,alias:se"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ISBN      string    `bun:",nullzero" json:"isbn"`
	ScannerID string    `bun:",nullzero" json:"scanner_id"`
	ScannedAt time.Time `json:"scanned_at"`
}

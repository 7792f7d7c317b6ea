package domain

import "time"

// MaintenanceEntry is a repair log record attached to an inventory item.
// Entries written at ticket close are keyed by (asset tag, performed-at
// timestamp) so a reopen can remove exactly the entry it created.
type MaintenanceEntry struct {
	ID          int64
	AssetTag    string
	Description string
	PerformedAt time.Time
}

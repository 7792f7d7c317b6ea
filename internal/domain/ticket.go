package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Ticket is the aggregate for equipment support requests. A ticket is open
// exactly when ClosedAt is nil; ClosedAt and Resolution are set together on
// close and cleared together on reopen.
type Ticket struct {
	ID         int64
	Protocol   int64
	Requester  string
	UBS        string
	Sector     string
	DefectType string
	Problem    string
	AssetTag   *string
	OpenedAt   time.Time
	ClosedAt   *time.Time
	Resolution *string
}

// Status derives the lifecycle state from the closing timestamp.
func (t *Ticket) Status() TicketStatus {
	if t.ClosedAt == nil {
		return TicketStatusOpen
	}
	return TicketStatusClosed
}

// IsOpen reports whether the ticket has not been closed.
func (t *Ticket) IsOpen() bool {
	return t.ClosedAt == nil
}

package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened   EventType = "ticket_opened"
	EventTicketClosed   EventType = "ticket_closed"
	EventTicketReopened EventType = "ticket_reopened"
	EventStockDepleted  EventType = "stock_depleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Protocol  int64       `json:"protocol"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	UBS        string  `json:"ubs"`
	Sector     string  `json:"sector"`
	DefectType string  `json:"defect_type"`
	AssetTag   *string `json:"asset_tag,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Resolution string   `json:"resolution"`
	PartsUsed  []string `json:"parts_used,omitempty"`
	WorkedTime string   `json:"worked_time"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	HistoryRemoved bool `json:"history_removed"`
}

// StockDepletedPayload signals a part quantity reaching zero.
type StockDepletedPayload struct {
	PartName string `json:"part_name"`
}

package dto

import (
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// OpenTicketRequest payload.
type OpenTicketRequest struct {
	UBS        string  `json:"ubs"`
	Sector     string  `json:"sector"`
	DefectType string  `json:"defect_type"`
	Problem    string  `json:"problem"`
	AssetTag   *string `json:"asset_tag,omitempty"`
}

// OpenTicketResponse returns the public handle.
type OpenTicketResponse struct {
	Protocol int64 `json:"protocol"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Resolution string   `json:"resolution"`
	PartsUsed  []string `json:"parts_used,omitempty"`
}

// ReopenTicketRequest payload.
type ReopenTicketRequest struct {
	RemoveMaintenanceRecord bool `json:"remove_maintenance_record"`
}

// TicketResponse renders a ticket with its derived working time.
// Timestamps use the desk format DD/MM/YYYY HH:MM:SS.
type TicketResponse struct {
	ID         int64               `json:"id"`
	Protocol   int64               `json:"protocol"`
	Requester  string              `json:"requester"`
	UBS        string              `json:"ubs"`
	Sector     string              `json:"sector"`
	DefectType string              `json:"defect_type"`
	Problem    string              `json:"problem"`
	AssetTag   *string             `json:"asset_tag,omitempty"`
	Status     domain.TicketStatus `json:"status"`
	OpenedAt   string              `json:"opened_at"`
	ClosedAt   *string             `json:"closed_at,omitempty"`
	Resolution *string             `json:"resolution,omitempty"`
	WorkedTime string              `json:"worked_time"`
}

// NewTicketResponse maps a domain ticket plus its computed working time.
func NewTicketResponse(ticket *domain.Ticket, workedTime string) TicketResponse {
	resp := TicketResponse{
		ID:         ticket.ID,
		Protocol:   ticket.Protocol,
		Requester:  ticket.Requester,
		UBS:        ticket.UBS,
		Sector:     ticket.Sector,
		DefectType: ticket.DefectType,
		Problem:    ticket.Problem,
		AssetTag:   ticket.AssetTag,
		Status:     ticket.Status(),
		OpenedAt:   workhours.FormatTimestamp(ticket.OpenedAt),
		Resolution: ticket.Resolution,
		WorkedTime: workedTime,
	}
	if ticket.ClosedAt != nil {
		closed := workhours.FormatTimestamp(*ticket.ClosedAt)
		resp.ClosedAt = &closed
	}
	return resp
}

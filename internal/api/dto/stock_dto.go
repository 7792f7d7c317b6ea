package dto

import (
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// PartRequest payload for adding or editing a stock part.
type PartRequest struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	InvoiceRef  *string `json:"invoice_ref,omitempty"`
}

// ToDomain converts the request into a part record.
func (r PartRequest) ToDomain() *domain.Part {
	return &domain.Part{
		Name:        r.Name,
		Quantity:    r.Quantity,
		Description: r.Description,
		InvoiceRef:  r.InvoiceRef,
	}
}

// PartResponse renders a stock part.
type PartResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	InvoiceRef  *string `json:"invoice_ref,omitempty"`
	AddedAt     string  `json:"added_at"`
}

// NewPartResponse maps a domain part.
func NewPartResponse(p *domain.Part) PartResponse {
	return PartResponse{
		ID:          p.ID,
		Name:        p.Name,
		Quantity:    p.Quantity,
		Description: p.Description,
		InvoiceRef:  p.InvoiceRef,
		AddedAt:     workhours.FormatTimestamp(p.AddedAt),
	}
}

// PartConsumptionResponse renders a consumption log row.
type PartConsumptionResponse struct {
	ID       int64  `json:"id"`
	TicketID int64  `json:"ticket_id"`
	PartName string `json:"part_name"`
	UsedAt   string `json:"used_at"`
}

// NewPartConsumptionResponse maps a consumption record.
func NewPartConsumptionResponse(c *domain.PartConsumption) PartConsumptionResponse {
	return PartConsumptionResponse{
		ID:       c.ID,
		TicketID: c.TicketID,
		PartName: c.PartName,
		UsedAt:   workhours.FormatTimestamp(c.UsedAt),
	}
}

package dto

import (
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// MachineRequest payload for registering or editing equipment.
type MachineRequest struct {
	AssetTag     string  `json:"asset_tag"`
	Type         string  `json:"type"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Status       string  `json:"status"`
	UBS          string  `json:"ubs"`
	Sector       string  `json:"sector"`
	Ownership    string  `json:"ownership"`
}

// ToDomain converts the request into a machine record.
func (r MachineRequest) ToDomain() *domain.Machine {
	return &domain.Machine{
		AssetTag:     r.AssetTag,
		Type:         r.Type,
		Brand:        r.Brand,
		Model:        r.Model,
		SerialNumber: r.SerialNumber,
		Status:       domain.MachineStatus(r.Status),
		UBS:          r.UBS,
		Sector:       r.Sector,
		Ownership:    domain.Ownership(r.Ownership),
	}
}

// MachineResponse renders an inventory item.
type MachineResponse struct {
	ID           int64   `json:"id"`
	AssetTag     string  `json:"asset_tag"`
	Type         string  `json:"type"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Status       string  `json:"status"`
	UBS          string  `json:"ubs"`
	Sector       string  `json:"sector"`
	Ownership    string  `json:"ownership"`
}

// NewMachineResponse maps a domain machine.
func NewMachineResponse(m *domain.Machine) MachineResponse {
	return MachineResponse{
		ID:           m.ID,
		AssetTag:     m.AssetTag,
		Type:         m.Type,
		Brand:        m.Brand,
		Model:        m.Model,
		SerialNumber: m.SerialNumber,
		Status:       string(m.Status),
		UBS:          m.UBS,
		Sector:       m.Sector,
		Ownership:    string(m.Ownership),
	}
}

// MaintenanceEntryResponse renders a repair log record.
type MaintenanceEntryResponse struct {
	ID          int64  `json:"id"`
	AssetTag    string `json:"asset_tag"`
	Description string `json:"description"`
	PerformedAt string `json:"performed_at"`
}

// NewMaintenanceEntryResponse maps a maintenance entry.
func NewMaintenanceEntryResponse(e *domain.MaintenanceEntry) MaintenanceEntryResponse {
	return MaintenanceEntryResponse{
		ID:          e.ID,
		AssetTag:    e.AssetTag,
		Description: e.Description,
		PerformedAt: workhours.FormatTimestamp(e.PerformedAt),
	}
}

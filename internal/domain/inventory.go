package domain

// MachineStatus enumerates operational states for inventoried equipment.
type MachineStatus string

const (
	MachineStatusActive      MachineStatus = "ACTIVE"
	MachineStatusMaintenance MachineStatus = "MAINTENANCE"
	MachineStatusInactive    MachineStatus = "INACTIVE"
)

// Ownership distinguishes purchased from leased equipment.
type Ownership string

const (
	OwnershipOwned  Ownership = "OWNED"
	OwnershipLeased Ownership = "LEASED"
)

// Machine is an inventoried piece of equipment, keyed by its asset tag.
type Machine struct {
	ID           int64
	AssetTag     string
	Type         string
	Brand        string
	Model        string
	SerialNumber *string
	Status       MachineStatus
	UBS          string
	Sector       string
	Ownership    Ownership
}

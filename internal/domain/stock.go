package domain

import "time"

// Part is a spare part held in stock. Quantity never goes negative; a
// decrement below zero floors at zero.
type Part struct {
	ID          int64
	Name        string
	Quantity    int
	Description string
	InvoiceRef  *string
	AddedAt     time.Time
}

// PartConsumption records one part consumed while closing a ticket.
type PartConsumption struct {
	ID       int64
	TicketID int64
	PartName string
	UsedAt   time.Time
}

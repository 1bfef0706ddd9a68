package domain

import "time"

type TerminalStatus string

const (
	TerminalOnline      TerminalStatus = "ONLINE"
	TerminalOffline     TerminalStatus = "OFFLINE"
	TerminalMaintenance TerminalStatus = "MAINTENANCE"
)

// Terminal is a kiosk machine (or synthesized desk channel), identified by
// serial number network-wide.
type Terminal struct {
	SN         string         `json:"sn"`
	ATMID      string         `json:"atm_id"`
	LocationID string         `json:"location_id"`
	CashOnHand float64        `json:"cash_on_hand"`
	LastOnline time.Time      `json:"last_online"`
	Status     TerminalStatus `json:"status"`
}

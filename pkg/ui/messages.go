// Package ui provides the Bubble Tea TUI for the whitelist dApp.
package ui

import (
	"time"

	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
)

// Message types for TUI updates

// StateMsg carries a page state snapshot.
type StateMsg struct {
	State domain.State
}

// BlockMsg is sent when a new block is received.
type BlockMsg struct {
	Number    uint64
	Timestamp time.Time
	Gas       string // formatted gas price, empty when unknown
}

// ErrorMsg is sent when an operation fails.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // "config", "ethereum", "wallet", "contract"
	Status  string // "connecting", "connected", "done", "skipped", "failed"
	Message string // Optional message
}

// actionDoneMsg reports that a service call issued from a key press returned.
// Failures reach the model separately as ErrorMsg through the presenter.
type actionDoneMsg struct {
	op  string
	err error
}

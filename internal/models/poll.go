package models

import "time"

// PollState is the per-source poller state machine position.
type PollState string

const (
	PollStateIdle       PollState = "IDLE"
	PollStateFetching   PollState = "FETCHING"
	PollStateTriggering PollState = "TRIGGERING"
)

// Poll source names.
const (
	PollSourceRoster = "roster"
	PollSourceLedger = "ledger"
)

// PollSourceStatus is a snapshot of one polling loop, exposed for operators.
type PollSourceStatus struct {
	Source     string     `json:"source"`
	State      PollState  `json:"state"`
	LastHash   string     `json:"last_hash,omitempty"`
	LastPoll   *time.Time `json:"last_poll,omitempty"`
	LastChange *time.Time `json:"last_change,omitempty"`
	Cycles     uint64     `json:"cycles"`
	Failures   uint64     `json:"failures"`
}

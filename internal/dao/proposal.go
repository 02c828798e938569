package dao

import (
	"math/big"

	"github.com/daovote/anoncore/internal/capability"
)

// State is a proposal's place in its one-way lifecycle.
type State int

const (
	Active State = iota
	Closed
	Archived
)

func (s State) String() string {
	switch s {
	case Active:
		return "Active"
	case Closed:
		return "Closed"
	case Archived:
		return "Archived"
	default:
		return "Unknown"
	}
}

// VoteMode selects how a proposal's admissible root set is checked.
type VoteMode int

const (
	// Fixed accepts only the proposal's own snapshotted eligible_root.
	Fixed VoteMode = iota
	// Trailing accepts any root currently in the window at or after
	// max(earliest_root_index, min_valid_root_index).
	Trailing
)

// Proposal is the immutable-once-pinned snapshot plus mutable tally and
// lifecycle state for one (dao, proposal id).
type Proposal struct {
	ID         uint64
	DAO        capability.DAOID
	Title      string
	ContentCID string
	YesVotes   uint64
	NoVotes    uint64
	CreatedAt  uint64
	EndTime    uint64
	CreatedBy  capability.Address
	State      State

	VKHash            [32]byte
	VKVersion         uint32
	EligibleRoot      *big.Int
	EarliestRootIndex uint32
	VoteMode          VoteMode
}

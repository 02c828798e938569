// Package errs defines the coarse error taxonomy the core reports to its
// host. Operations never return ad-hoc error strings; every failure is
// classified into one of a small set of kinds so a caller (or a test) can
// branch on Kind() instead of matching error text.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the coarse category a failure belongs to.
type Kind int

const (
	// Input covers malformed bytes, length mismatches, non-decodable points.
	Input Kind = iota
	// FieldViolation covers Fr-typed inputs that are not < r, or a zero nullifier.
	FieldViolation
	// Authorization covers missing admin or membership capability.
	Authorization
	// LifecycleConflict covers illegal state for the object being acted on.
	LifecycleConflict
	// SnapshotMismatch covers root/VK snapshot disagreement at vote time.
	SnapshotMismatch
	// DoubleSpend covers nullifier reuse.
	DoubleSpend
	// Cryptography is deliberately coarse: any failure in the proof path
	// (bad point, failed pairing) surfaces identically as InvalidProof so an
	// observer cannot distinguish the underlying cause.
	Cryptography
	// Structural covers malformed verification keys and out-of-range depths.
	Structural
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "Input"
	case FieldViolation:
		return "FieldViolation"
	case Authorization:
		return "Authorization"
	case LifecycleConflict:
		return "LifecycleConflict"
	case SnapshotMismatch:
		return "SnapshotMismatch"
	case DoubleSpend:
		return "DoubleSpend"
	case Cryptography:
		return "Cryptography"
	case Structural:
		return "Structural"
	default:
		return "Unknown"
	}
}

// Error wraps a sentinel condition with its taxonomy kind.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// KindOf returns the taxonomy kind of err, or false if err was not produced
// by this package.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}

// Is lets callers do errors.Is(err, errs.ErrNullifierUsed) style comparisons
// against the named conditions below instead of plain Kind checks. Two
// errors match when both their kind and their message are equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.msg == t.msg
}

// New creates a fresh named condition of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap attaches an underlying error to a named condition without losing the
// taxonomy kind.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Named conditions referenced directly by the component packages. These are
// sentinels: compare with errors.Is, or branch on KindOf for the coarser
// taxonomy check.
var (
	// Input
	ErrBadLength   = New(Input, "bad length")
	ErrNotOnCurve  = New(Input, "point not on curve")
	ErrRootNotFound = New(Input, "root not found")

	// FieldViolation
	ErrNotInField    = New(FieldViolation, "value >= field modulus")
	ErrZeroNullifier = New(FieldViolation, "nullifier must be nonzero")

	// Authorization
	ErrNotAdmin        = New(Authorization, "caller is not dao admin")
	ErrNoMembership    = New(Authorization, "caller lacks membership capability")
	ErrUntrustedCaller = New(Authorization, "caller is not the trusted registry")

	// LifecycleConflict
	ErrTreeNotInitialized = New(LifecycleConflict, "tree not initialized")
	ErrAlreadyInitialized = New(LifecycleConflict, "tree already initialized")
	ErrTreeFull           = New(LifecycleConflict, "tree full")
	ErrCommitmentExists   = New(LifecycleConflict, "commitment already registered")
	ErrMemberExists       = New(LifecycleConflict, "holder already a member")
	ErrMemberNotInTree    = New(LifecycleConflict, "holder not a member")
	ErrMemberNotRevoked   = New(LifecycleConflict, "holder's commitment was not revoked")
	ErrVkNotSet           = New(LifecycleConflict, "no verification key set for dao")
	ErrInvalidState       = New(LifecycleConflict, "proposal not in required state")
	ErrVotingClosed       = New(LifecycleConflict, "voting window closed")

	// SnapshotMismatch
	ErrRootMismatch        = New(SnapshotMismatch, "root does not match fixed eligible root")
	ErrRootNotInHistory    = New(SnapshotMismatch, "root not currently in history window")
	ErrRootPredatesProposal = New(SnapshotMismatch, "root predates proposal's admissible window")
	ErrVkVersionMismatch   = New(SnapshotMismatch, "vk version does not exist")
	ErrVkChanged           = New(SnapshotMismatch, "vk hash no longer matches proposal snapshot")

	// DoubleSpend
	ErrNullifierUsed = New(DoubleSpend, "nullifier already used")

	// Cryptography
	ErrInvalidProof = New(Cryptography, "invalid proof")

	// Structural
	ErrVkIcLengthMismatch = New(Structural, "vk ic length mismatch")
	ErrVkIcTooLarge       = New(Structural, "vk ic length exceeds maximum")
	ErrInvalidDepth       = New(Structural, "depth out of bounds")
)

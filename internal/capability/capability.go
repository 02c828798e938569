// Package capability defines the narrow interfaces the core depends on but
// does not implement: DAO admin resolution and membership-token holding.
// Per the design note on cyclic contract dependencies, these are bound by
// constructor-style injection at initialization time rather than looked up
// globally by name, so the core has no compile-time or runtime dependency
// on the registry/membership contracts' own implementations.
package capability

// Address is the caller-identity type the core authenticates against. It is
// an opaque string so the core never needs to know the host's concrete
// address representation (20-byte EVM address, bech32, etc).
type Address string

// DAOID identifies a DAO. It is a distinct type, not a bare uint64, so it
// can never be accidentally passed where a proposal ID or a leaf index is
// expected.
type DAOID uint64

// AdminRegistry resolves the current admin of a DAO.
type AdminRegistry interface {
	GetAdmin(d DAOID) (Address, error)
}

// MembershipRegistry reports whether an address currently holds membership
// for a DAO.
type MembershipRegistry interface {
	Has(d DAOID, addr Address) (bool, error)
}

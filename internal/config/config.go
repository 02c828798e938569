// Package config holds the fixed protocol constants of the voting core.
// There is no on-disk format, no environment variable, and no CLI flag: the
// core is a pure in-process library and every value below is a compiled-in
// protocol parameter, not runtime configuration.
package config

const (
	// MaxTreeDepth bounds a per-DAO Merkle tree's depth (1..MaxTreeDepth).
	MaxTreeDepth = 20

	// MaxRoots is the size of the per-DAO root-history ring buffer.
	MaxRoots = 30

	// NumPublicSignals is n, the exact number of public signals the vote
	// circuit exposes: [root, nullifier, dao, proposal, choice].
	NumPublicSignals = 5

	// MaxICLength is the hard ceiling on a verification key's IC length
	// (n+1 = 6 in practice; 21 is the DoS guard independent of n).
	MaxICLength = 21

	// MaxTitleBytes bounds a proposal's title.
	MaxTitleBytes = 100

	// MaxContentCIDBytes bounds a proposal's content_cid.
	MaxContentCIDBytes = 64
)

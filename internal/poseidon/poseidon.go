// Package poseidon exposes the two fixed-arity Poseidon hashes the core
// needs over BN254's scalar field: poseidon2 for Merkle tree nodes and
// poseidon3 for nullifier derivation. Bit-exactness with the off-chain
// circuit's Poseidon is the entire point of this package, so the
// permutation itself is not reimplemented here: it is taken verbatim from
// github.com/iden3/go-iden3-crypto/poseidon, the circomlib-compatible
// classic Poseidon used across the iden3/circom ecosystem, which already
// publishes the exact parameter set the component design requires (R_F=8
// full rounds; R_P=57 partial rounds at t=3 for the two-input case, R_P=56
// at t=4 for the three-input case).
package poseidon

import (
	"math/big"

	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/daovote/anoncore/internal/bn254"
	"github.com/daovote/anoncore/internal/errs"
)

// Poseidon2 computes poseidon_permutation(state=[0,a,b], t=3, R_F=8,
// R_P=57)[0]. Both inputs must already be field elements (< r); callers are
// expected to have validated that before reaching the hasher, per the
// component contract (Poseidon itself cannot fail for Fr inputs).
func Poseidon2(a, b *big.Int) (*big.Int, error) {
	if !bn254.IsInField(a) || !bn254.IsInField(b) {
		return nil, errs.ErrNotInField
	}
	return iden3poseidon.Hash([]*big.Int{a, b})
}

// Poseidon3 computes the t=4, R_F=8, R_P=56 permutation over three inputs.
func Poseidon3(a, b, c *big.Int) (*big.Int, error) {
	if !bn254.IsInField(a) || !bn254.IsInField(b) || !bn254.IsInField(c) {
		return nil, errs.ErrNotInField
	}
	return iden3poseidon.Hash([]*big.Int{a, b, c})
}

// MustPoseidon2 panics on field violation; used only where inputs are
// already known-valid invariants of this package (e.g. the zero cache).
func MustPoseidon2(a, b *big.Int) *big.Int {
	h, err := Poseidon2(a, b)
	if err != nil {
		panic(err)
	}
	return h
}

// Package bn254 exposes the minimal, auditable BN254 surface the rest of the
// core needs: field-membership checks, G1/G2 wire decoding with on-curve
// checks, G1 arithmetic, and a multi-pairing check. It is built directly on
// github.com/consensys/gnark-crypto's ecc/bn254 package, the same curve
// library the rest of the dependency graph already uses.
package bn254

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/daovote/anoncore/internal/errs"
)

// FrSize is the byte length of a wire-encoded scalar-field element.
const FrSize = 32

// G1Size is the byte length of a wire-encoded G1 point.
const G1Size = 64

// G2Size is the byte length of a wire-encoded G2 point.
const G2Size = 128

// FrModulus returns r, the BN254 scalar-field order.
func FrModulus() *big.Int {
	return fr.Modulus()
}

// IsInField reports whether x < r. x must be non-negative; a negative value
// is never in field.
func IsInField(x *big.Int) bool {
	if x.Sign() < 0 {
		return false
	}
	return x.Cmp(FrModulus()) < 0
}

// DecodeFr parses 32 big-endian bytes as a scalar-field element and requires
// it to be strictly less than r. It never silently reduces: a value >= r is
// a hard error, not a wraparound.
func DecodeFr(b []byte) (*big.Int, error) {
	if len(b) != FrSize {
		return nil, errs.ErrBadLength
	}
	x := new(big.Int).SetBytes(b)
	if !IsInField(x) {
		return nil, errs.ErrNotInField
	}
	return x, nil
}

// EncodeFr serializes a field element (already known to be < r) as 32
// big-endian bytes.
func EncodeFr(x *big.Int) [FrSize]byte {
	var out [FrSize]byte
	x.FillBytes(out[:])
	return out
}

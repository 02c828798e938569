package bn254

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"

	"github.com/daovote/anoncore/internal/errs"
)

// G1 is a point on BN254's G1. Cofactor 1 means curve membership already
// implies subgroup membership, so no separate subgroup check is needed.
type G1 = bn254.G1Affine

// G2 is a point on BN254's G2 (Fp2-valued coordinates). G2's cofactor is
// large; absent a cheap subgroup check this package relies on the pairing
// equation itself to reject points outside the correct subgroup, per the
// documented limitation in the component design.
type G2 = bn254.G2Affine

func fpElement(b []byte) (fp.Element, error) {
	var z fp.Element
	x := new(big.Int).SetBytes(b)
	if x.Cmp(fp.Modulus()) >= 0 {
		return z, errs.ErrNotOnCurve
	}
	z.SetBigInt(x)
	return z, nil
}

// G1Decode interprets 64 bytes as (x:32, y:32) big-endian and requires the
// result to satisfy the curve equation y^2 = x^3 + 3 mod p.
func G1Decode(b []byte) (G1, error) {
	var p G1
	if len(b) != G1Size {
		return p, errs.ErrBadLength
	}
	x, err := fpElement(b[:32])
	if err != nil {
		return p, err
	}
	y, err := fpElement(b[32:64])
	if err != nil {
		return p, err
	}
	p.X, p.Y = x, y
	if !p.IsOnCurve() {
		return p, errs.ErrNotOnCurve
	}
	return p, nil
}

// G1Encode serializes a G1 point as 64 bytes, x then y, big-endian.
func G1Encode(p G1) [G1Size]byte {
	var out [G1Size]byte
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[0:32], xb[:])
	copy(out[32:64], yb[:])
	return out
}

// G2Decode interprets 128 bytes as (x.c1, x.c0, y.c1, y.c0), each 32 bytes
// big-endian, and requires the result to satisfy the twisted curve equation
// over Fp2.
func G2Decode(b []byte) (G2, error) {
	var p G2
	if len(b) != G2Size {
		return p, errs.ErrBadLength
	}
	xc1, err := fpElement(b[0:32])
	if err != nil {
		return p, err
	}
	xc0, err := fpElement(b[32:64])
	if err != nil {
		return p, err
	}
	yc1, err := fpElement(b[64:96])
	if err != nil {
		return p, err
	}
	yc0, err := fpElement(b[96:128])
	if err != nil {
		return p, err
	}
	p.X.A0, p.X.A1 = xc0, xc1
	p.Y.A0, p.Y.A1 = yc0, yc1
	if !p.IsOnCurve() {
		return p, errs.ErrNotOnCurve
	}
	return p, nil
}

// G2Encode serializes a G2 point as 128 bytes in (x.c1, x.c0, y.c1, y.c0)
// order, each component big-endian.
func G2Encode(p G2) [G2Size]byte {
	var out [G2Size]byte
	xc1 := p.X.A1.Bytes()
	xc0 := p.X.A0.Bytes()
	yc1 := p.Y.A1.Bytes()
	yc0 := p.Y.A0.Bytes()
	copy(out[0:32], xc1[:])
	copy(out[32:64], xc0[:])
	copy(out[64:96], yc1[:])
	copy(out[96:128], yc0[:])
	return out
}

// G1Neg returns (x, p-y).
func G1Neg(p G1) G1 {
	var out G1
	out.Neg(&p)
	return out
}

// G1Add returns a+b in affine coordinates.
func G1Add(a, b G1) G1 {
	var out G1
	out.Add(&a, &b)
	return out
}

// G1MulScalar returns s*P. s must already be a field element (< r); callers
// are responsible for field discipline before calling this.
func G1MulScalar(p G1, s *big.Int) G1 {
	var out G1
	out.ScalarMultiplication(&p, s)
	return out
}

// PairingCheck returns true iff prod(e(G_i, H_i)) == 1 over the supplied
// pairs, via a single multi-Miller-loop plus final exponentiation.
func PairingCheck(g1 []G1, g2 []G2) (bool, error) {
	ok, err := bn254.PairingCheck(g1, g2)
	if err != nil {
		return false, errs.Wrap(errs.Cryptography, "pairing computation failed", err)
	}
	return ok, nil
}

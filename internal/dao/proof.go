package dao

import (
	"github.com/daovote/anoncore/internal/bn254"
	"github.com/daovote/anoncore/internal/errs"
)

// Proof is a decoded Groth16 BN254 proof.
type Proof struct {
	A bn254.G1
	B bn254.G2
	C bn254.G1
}

// DecodeProof parses the wire format a(64) || b(128) || c(64). A wrong total
// length is ErrBadLength; any point that fails to decode is reported as
// ErrInvalidProof, without saying which check failed.
func DecodeProof(b []byte) (Proof, error) {
	var p Proof
	const want = bn254.G1Size + bn254.G2Size + bn254.G1Size
	if len(b) != want {
		return p, errs.ErrBadLength
	}
	a, err := bn254.G1Decode(b[0:bn254.G1Size])
	if err != nil {
		return p, errs.ErrInvalidProof
	}
	bb, err := bn254.G2Decode(b[bn254.G1Size : bn254.G1Size+bn254.G2Size])
	if err != nil {
		return p, errs.ErrInvalidProof
	}
	c, err := bn254.G1Decode(b[bn254.G1Size+bn254.G2Size:])
	if err != nil {
		return p, errs.ErrInvalidProof
	}
	p.A, p.B, p.C = a, bb, c
	return p, nil
}

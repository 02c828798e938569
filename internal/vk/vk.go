// Package vk implements the per-DAO versioned verification-key store: wire
// decoding/encoding of a Groth16 BN254 verification key, its canonical
// SHA-256 fingerprint, and an immutable append-only version history per DAO.
package vk

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/daovote/anoncore/internal/bn254"
	"github.com/daovote/anoncore/internal/capability"
	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/errs"
)

// VerificationKey is a decoded Groth16 BN254 verification key.
type VerificationKey struct {
	Alpha bn254.G1
	Beta  bn254.G2
	Gamma bn254.G2
	Delta bn254.G2
	IC    []bn254.G1
}

// Decode parses the wire format:
// alpha(64) || beta(128) || gamma(128) || delta(128) || ic_len(32 BE) || ic[0](64) || ... || ic[n](64)
func Decode(b []byte) (VerificationKey, error) {
	var vk VerificationKey
	const head = bn254.G1Size + 3*bn254.G2Size + 32
	if len(b) < head {
		return vk, errs.ErrBadLength
	}
	off := 0
	alpha, err := bn254.G1Decode(b[off : off+bn254.G1Size])
	if err != nil {
		return vk, err
	}
	off += bn254.G1Size
	beta, err := bn254.G2Decode(b[off : off+bn254.G2Size])
	if err != nil {
		return vk, err
	}
	off += bn254.G2Size
	gamma, err := bn254.G2Decode(b[off : off+bn254.G2Size])
	if err != nil {
		return vk, err
	}
	off += bn254.G2Size
	delta, err := bn254.G2Decode(b[off : off+bn254.G2Size])
	if err != nil {
		return vk, err
	}
	off += bn254.G2Size

	icLenBytes := b[off : off+32]
	off += 32
	icLen := binary.BigEndian.Uint32(icLenBytes[28:32])
	for i := 0; i < 28; i++ {
		if icLenBytes[i] != 0 {
			return vk, errs.ErrBadLength
		}
	}
	if icLen > config.MaxICLength {
		return vk, errs.ErrVkIcTooLarge
	}
	if len(b) != head+int(icLen)*bn254.G1Size {
		return vk, errs.ErrBadLength
	}
	ic := make([]bn254.G1, icLen)
	for i := 0; i < int(icLen); i++ {
		p, err := bn254.G1Decode(b[off : off+bn254.G1Size])
		if err != nil {
			return vk, err
		}
		ic[i] = p
		off += bn254.G1Size
	}

	vk.Alpha, vk.Beta, vk.Gamma, vk.Delta, vk.IC = alpha, beta, gamma, delta, ic
	return vk, nil
}

// Encode serializes a verification key to the canonical wire format.
func Encode(vk VerificationKey) []byte {
	out := make([]byte, 0, bn254.G1Size+3*bn254.G2Size+32+len(vk.IC)*bn254.G1Size)
	a := bn254.G1Encode(vk.Alpha)
	out = append(out, a[:]...)
	be := bn254.G2Encode(vk.Beta)
	out = append(out, be[:]...)
	ga := bn254.G2Encode(vk.Gamma)
	out = append(out, ga[:]...)
	de := bn254.G2Encode(vk.Delta)
	out = append(out, de[:]...)
	var icLen [32]byte
	binary.BigEndian.PutUint32(icLen[28:32], uint32(len(vk.IC)))
	out = append(out, icLen[:]...)
	for _, p := range vk.IC {
		pe := bn254.G1Encode(p)
		out = append(out, pe[:]...)
	}
	return out
}

// CanonicalHash is the SHA-256 fingerprint used as a canary against
// accidental VK substitution (data-model invariant I4).
func CanonicalHash(vk VerificationKey) [32]byte {
	return sha256.Sum256(Encode(vk))
}

// Store is the per-DAO immutable version history of verification keys.
type Store struct {
	mu      sync.Mutex
	admin   capability.AdminRegistry
	version map[capability.DAOID]uint32
	history map[capability.DAOID]map[uint32]VerificationKey
}

// NewStore returns an empty store bound to the given admin collaborator.
func NewStore(admin capability.AdminRegistry) *Store {
	return &Store{
		admin:   admin,
		version: make(map[capability.DAOID]uint32),
		history: make(map[capability.DAOID]map[uint32]VerificationKey),
	}
}

func validate(vk VerificationKey) error {
	if len(vk.IC) != config.NumPublicSignals+1 {
		return errs.ErrVkIcLengthMismatch
	}
	if len(vk.IC) > config.MaxICLength {
		return errs.ErrVkIcTooLarge
	}
	return nil
}

func (s *Store) set(d capability.DAOID, vk VerificationKey) (uint32, error) {
	if err := validate(vk); err != nil {
		return 0, err
	}
	v := s.version[d] + 1
	if s.history[d] == nil {
		s.history[d] = make(map[uint32]VerificationKey)
	}
	s.history[d][v] = vk
	s.version[d] = v
	return v, nil
}

// SetVK requires caller to be the DAO admin.
func (s *Store) SetVK(d capability.DAOID, vk VerificationKey, caller capability.Address) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.admin.GetAdmin(d)
	if err != nil {
		return 0, errs.Wrap(errs.Authorization, "admin lookup failed", err)
	}
	if a != caller {
		return 0, errs.ErrNotAdmin
	}
	return s.set(d, vk)
}

// SetVKFromRegistry is the trusted-bootstrap variant; the host must gate
// calls to this to the registry contract's own address.
func (s *Store) SetVKFromRegistry(d capability.DAOID, vk VerificationKey) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(d, vk)
}

// CurrentVersion returns the DAO's current VK version, 0 if unset.
func (s *Store) CurrentVersion(d capability.DAOID) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version[d]
}

// VKForVersion reads the immutable history.
func (s *Store) VKForVersion(d capability.DAOID, v uint32) (VerificationKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byV, ok := s.history[d]
	if !ok {
		return VerificationKey{}, errs.ErrVkNotSet
	}
	vk, ok := byV[v]
	if !ok {
		return VerificationKey{}, errs.ErrVkVersionMismatch
	}
	return vk, nil
}

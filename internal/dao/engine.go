// Package dao implements the Proposal & Vote Engine: per-DAO verification
// key lifecycle, proposal creation and state transitions, and the vote
// admission path (field discipline, root policy, nullifier uniqueness,
// Groth16 verification, atomic tally + nullifier commit). It is grounded on
// the manual pairing-equation verifier pattern in parsdao-pars/zk/verifier.go
// (see DESIGN.md), re-expressed over this module's own bn254/vk/forest
// packages and a fixed public-signal order: [root, nullifier, dao, proposal, choice].
package dao

import (
	"math/big"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daovote/anoncore/internal/bn254"
	"github.com/daovote/anoncore/internal/capability"
	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/errs"
	"github.com/daovote/anoncore/internal/forest"
	"github.com/daovote/anoncore/internal/vk"
)

// Engine owns every DAO's proposals and nullifier registry. The Merkle
// forest and VK store are injected so a caller can share them across the
// rest of a host's wiring, per the constructor-style capability binding
// design note.
type Engine struct {
	mu     sync.Mutex
	forest *forest.Forest
	vks    *vk.Store
	admin  capability.AdminRegistry
	member capability.MembershipRegistry

	proposals      map[capability.DAOID]map[uint64]*Proposal
	nextProposalID map[capability.DAOID]uint64
	used           map[capability.DAOID]map[uint64]map[string]bool

	log zerolog.Logger
}

// NewEngine wires an engine to its collaborators.
func NewEngine(f *forest.Forest, vks *vk.Store, admin capability.AdminRegistry, member capability.MembershipRegistry) *Engine {
	return &Engine{
		forest:         f,
		vks:            vks,
		admin:          admin,
		member:         member,
		proposals:      make(map[capability.DAOID]map[uint64]*Proposal),
		nextProposalID: make(map[capability.DAOID]uint64),
		used:           make(map[capability.DAOID]map[uint64]map[string]bool),
		log:            log.With().Str("component", "dao").Logger(),
	}
}

func (e *Engine) requireAdmin(d capability.DAOID, caller capability.Address) error {
	a, err := e.admin.GetAdmin(d)
	if err != nil {
		return errs.Wrap(errs.Authorization, "admin lookup failed", err)
	}
	if a != caller {
		return errs.ErrNotAdmin
	}
	return nil
}

// SetVK validates and stores a new verification key version for a DAO.
func (e *Engine) SetVK(d capability.DAOID, vkBytes []byte, caller capability.Address) (uint32, error) {
	decoded, err := vk.Decode(vkBytes)
	if err != nil {
		return 0, err
	}
	v, err := e.vks.SetVK(d, decoded, caller)
	if err != nil {
		return 0, err
	}
	e.log.Info().Uint64("dao", uint64(d)).Uint32("version", v).Msg("VKSet")
	return v, nil
}

// SetVKFromRegistry is the trusted-bootstrap variant.
func (e *Engine) SetVKFromRegistry(d capability.DAOID, vkBytes []byte) (uint32, error) {
	decoded, err := vk.Decode(vkBytes)
	if err != nil {
		return 0, err
	}
	v, err := e.vks.SetVKFromRegistry(d, decoded)
	if err != nil {
		return 0, err
	}
	e.log.Info().Uint64("dao", uint64(d)).Uint32("version", v).Msg("VKSet")
	return v, nil
}

// CreateProposalParams bundles create_proposal's arguments.
type CreateProposalParams struct {
	DAO        capability.DAOID
	Title      string
	ContentCID string
	EndTime    uint64
	Creator    capability.Address
	VoteMode   VoteMode
	// VKVersion, if non-nil, pins a specific existing version; otherwise the
	// DAO's current version is used.
	VKVersion *uint32
	// AdminOnly requires Creator to be the DAO admin rather than merely a
	// member; this DAO-level policy lives outside this module's data model
	// (§3) and is supplied by the caller per invocation.
	AdminOnly bool
	Now       uint64
}

// CreateProposal implements create_proposal.
func (e *Engine) CreateProposal(p CreateProposalParams) (uint64, error) {
	if len(p.Title) > config.MaxTitleBytes {
		return 0, errs.ErrBadLength
	}
	if len(p.ContentCID) > config.MaxContentCIDBytes {
		return 0, errs.ErrBadLength
	}
	if p.EndTime != 0 && p.EndTime <= p.Now {
		return 0, errs.ErrBadLength
	}

	if p.AdminOnly {
		if err := e.requireAdmin(p.DAO, p.Creator); err != nil {
			return 0, err
		}
	} else {
		ok, err := e.member.Has(p.DAO, p.Creator)
		if err != nil {
			return 0, errs.Wrap(errs.Authorization, "membership lookup failed", err)
		}
		if !ok {
			return 0, errs.ErrNoMembership
		}
	}

	var v uint32
	if p.VKVersion != nil {
		v = *p.VKVersion
	} else {
		v = e.vks.CurrentVersion(p.DAO)
	}
	if v == 0 {
		return 0, errs.ErrVkNotSet
	}
	vkv, err := e.vks.VKForVersion(p.DAO, v)
	if err != nil {
		return 0, err
	}

	root, err := e.forest.CurrentRoot(p.DAO)
	if err != nil {
		return 0, err
	}
	idx, err := e.forest.CurrentIndex(p.DAO)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pid := e.nextProposalID[p.DAO] + 1
	e.nextProposalID[p.DAO] = pid

	prop := &Proposal{
		ID:                pid,
		DAO:               p.DAO,
		Title:             p.Title,
		ContentCID:        p.ContentCID,
		CreatedAt:         p.Now,
		EndTime:           p.EndTime,
		CreatedBy:         p.Creator,
		State:             Active,
		VKHash:            vk.CanonicalHash(vkv),
		VKVersion:         v,
		EligibleRoot:      root,
		EarliestRootIndex: idx,
		VoteMode:          p.VoteMode,
	}
	if e.proposals[p.DAO] == nil {
		e.proposals[p.DAO] = make(map[uint64]*Proposal)
	}
	e.proposals[p.DAO][pid] = prop
	if e.used[p.DAO] == nil {
		e.used[p.DAO] = make(map[uint64]map[string]bool)
	}
	e.used[p.DAO][pid] = make(map[string]bool)

	e.log.Info().Uint64("dao", uint64(p.DAO)).Uint64("pid", pid).Msg("Proposal")
	return pid, nil
}

func (e *Engine) getProposal(d capability.DAOID, pid uint64) (*Proposal, error) {
	byID, ok := e.proposals[d]
	if !ok {
		return nil, errs.ErrInvalidState
	}
	prop, ok := byID[pid]
	if !ok {
		return nil, errs.ErrInvalidState
	}
	return prop, nil
}

// CloseProposal transitions Active -> Closed; idempotent on Closed.
func (e *Engine) CloseProposal(d capability.DAOID, pid uint64, caller capability.Address) error {
	if err := e.requireAdmin(d, caller); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	prop, err := e.getProposal(d, pid)
	if err != nil {
		return err
	}
	switch prop.State {
	case Active:
		prop.State = Closed
	case Closed:
		// idempotent
	case Archived:
		return errs.ErrInvalidState
	}
	e.log.Info().Uint64("dao", uint64(d)).Uint64("pid", pid).Msg("ProposalClosed")
	return nil
}

// ArchiveProposal transitions Closed -> Archived; idempotent on Archived.
func (e *Engine) ArchiveProposal(d capability.DAOID, pid uint64, caller capability.Address) error {
	if err := e.requireAdmin(d, caller); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	prop, err := e.getProposal(d, pid)
	if err != nil {
		return err
	}
	switch prop.State {
	case Closed:
		prop.State = Archived
	case Archived:
		// idempotent
	case Active:
		return errs.ErrInvalidState
	}
	e.log.Info().Uint64("dao", uint64(d)).Uint64("pid", pid).Msg("ProposalArchived")
	return nil
}

// VoteParams bundles vote()'s arguments.
type VoteParams struct {
	DAO        capability.DAOID
	PID        uint64
	Choice     bool
	Nullifier  *big.Int
	Root       *big.Int
	Commitment *big.Int
	Proof      Proof
	Now        uint64
}

// Vote implements the full vote admission algorithm (§4.4): state check,
// field discipline, root policy, nullifier uniqueness, VK canary, Groth16
// pairing check, then an atomic tally + nullifier commit. No partial
// mutation occurs on any failure path.
func (e *Engine) Vote(p VoteParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1. State.
	prop, err := e.getProposal(p.DAO, p.PID)
	if err != nil {
		return err
	}
	if prop.State != Active {
		return errs.ErrVotingClosed
	}
	if prop.EndTime != 0 && p.Now >= prop.EndTime {
		return errs.ErrVotingClosed
	}

	// 2. Field discipline.
	if !bn254.IsInField(p.Nullifier) || !bn254.IsInField(p.Root) || !bn254.IsInField(p.Commitment) {
		return errs.ErrNotInField
	}
	if p.Nullifier.Sign() == 0 {
		return errs.ErrZeroNullifier
	}

	// 3. Root policy.
	switch prop.VoteMode {
	case Fixed:
		if p.Root.Cmp(prop.EligibleRoot) != 0 {
			return errs.ErrRootMismatch
		}
	case Trailing:
		ri, ok, err := e.forest.RootOK(p.DAO, p.Root)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrRootNotInHistory
		}
		minIdx, err := e.forest.MinRootIndex(p.DAO)
		if err != nil {
			return err
		}
		floor := prop.EarliestRootIndex
		if minIdx > floor {
			floor = minIdx
		}
		if ri < floor {
			return errs.ErrRootPredatesProposal
		}
	}

	// 4. Nullifier policy.
	nKey := p.Nullifier.String()
	if e.used[p.DAO][p.PID][nKey] {
		return errs.ErrNullifierUsed
	}

	// 5. VK resolution + canary.
	vkv, err := e.vks.VKForVersion(p.DAO, prop.VKVersion)
	if err != nil {
		return err
	}
	if vk.CanonicalHash(vkv) != prop.VKHash {
		return errs.ErrVkChanged
	}

	// 6. Public-signal vector, fixed order.
	choiceVal := big.NewInt(0)
	if p.Choice {
		choiceVal = big.NewInt(1)
	}
	signals := [config.NumPublicSignals]*big.Int{
		p.Root,
		p.Nullifier,
		new(big.Int).SetUint64(uint64(p.DAO)),
		new(big.Int).SetUint64(p.PID),
		choiceVal,
	}

	// 7. Linear combination.
	if len(vkv.IC) != config.NumPublicSignals+1 {
		return errs.ErrVkIcLengthMismatch
	}
	vkX := vkv.IC[0]
	for i, s := range signals {
		term := bn254.G1MulScalar(vkv.IC[i+1], s)
		vkX = bn254.G1Add(vkX, term)
	}

	// 8. Pairing.
	negA := bn254.G1Neg(p.Proof.A)
	ok, err := bn254.PairingCheck(
		[]bn254.G1{negA, vkv.Alpha, vkX, p.Proof.C},
		[]bn254.G2{p.Proof.B, vkv.Beta, vkv.Gamma, vkv.Delta},
	)
	if err != nil || !ok {
		return errs.ErrInvalidProof
	}

	// 9. Atomic commit.
	if p.Choice {
		prop.YesVotes++
	} else {
		prop.NoVotes++
	}
	e.used[p.DAO][p.PID][nKey] = true

	e.log.Info().Uint64("dao", uint64(p.DAO)).Uint64("pid", p.PID).Bool("choice", p.Choice).Msg("Vote")
	return nil
}

// GetResults returns a proposal's current tally.
func (e *Engine) GetResults(d capability.DAOID, pid uint64) (yes uint64, no uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prop, err := e.getProposal(d, pid)
	if err != nil {
		return 0, 0, err
	}
	return prop.YesVotes, prop.NoVotes, nil
}

// IsNullifierUsed reports whether a nullifier has already been spent for a
// given (dao, proposal).
func (e *Engine) IsNullifierUsed(d capability.DAOID, pid uint64, nullifier *big.Int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.used[d][pid][nullifier.String()]
}

// ProposalState returns a proposal's current lifecycle state.
func (e *Engine) ProposalState(d capability.DAOID, pid uint64) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prop, err := e.getProposal(d, pid)
	if err != nil {
		return 0, err
	}
	return prop.State, nil
}

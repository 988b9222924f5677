package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// TrialKey uniquely identifies a reproducible trial. Two trials with the
// same TrialKey and identical configuration MUST produce bit-for-bit
// identical metrics.
type TrialKey int64

// NewTrialKey creates a TrialKey from a seed value.
func NewTrialKey(seed int64) TrialKey {
	return TrialKey(seed)
}

const (
	// SubsystemAttacker seeds the baseline attacker mix, currently its
	// start-time desynchronization.
	SubsystemAttacker = "attacker"

	// SubsystemStuffer seeds credential-list construction for the
	// credential-stuffing attacker model.
	SubsystemStuffer = "stuffer"
)

// SubsystemUser returns the subsystem name for legitimate user N, so each
// user draws from an isolated deterministic stream.
func SubsystemUser(id int) string {
	return fmt.Sprintf("user_%d", id)
}

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, derived as trialSeed XOR fnv1a64(subsystemName). Isolation
// matters: adding a draw to one actor's behavior must not perturb every
// other actor's sequence.
//
// Thread-safety: NOT thread-safe. Each trial owns its own instance and
// runs its event loop on a single goroutine.
type PartitionedRNG struct {
	key        TrialKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a TrialKey.
func NewPartitionedRNG(key TrialKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance
// (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the TrialKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() TrialKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

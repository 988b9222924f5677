package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Attacker model names accepted by TrialConfig.
const (
	AttackerBaseline     = "baseline"
	AttackerCredStuffing = "cred_stuffing"
)

// numNormalUsers is the legitimate population per trial world.
const numNormalUsers = 50

// TrialConfig fully determines one trial. Identical configs always
// reproduce identical results.
type TrialConfig struct {
	Defense       string
	Params        map[string]float64
	Seed          int64
	Duration      float64 // simulated seconds, must be > 0
	AttackerModel string
}

// Validate fails fast on malformed configs without clamping anything.
func (c TrialConfig) Validate() error {
	if err := ValidateDefenseParams(c.Defense, c.Params); err != nil {
		return err
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	switch c.AttackerModel {
	case AttackerBaseline, AttackerCredStuffing:
	default:
		return fmt.Errorf("unknown attacker model %q", c.AttackerModel)
	}
	return nil
}

// Family returns the aggregation key for this config: defense plus
// canonical parameters, seed excluded.
func (c TrialConfig) Family() string {
	return FamilyKey(c.Defense, c.Params)
}

// TrialStatus marks whether a trial produced usable metrics.
type TrialStatus string

const (
	TrialSuccess TrialStatus = "success"
	TrialFailed  TrialStatus = "failed"
)

// TrialResult is the immutable output of one trial. Failed trials carry
// NaN metrics so they can never silently enter an aggregate.
type TrialResult struct {
	Family        string
	Defense       string
	Params        map[string]float64
	Seed          int64
	Duration      float64
	AttackerModel string

	Security         float64
	Usability        float64
	TimeToCompromise float64
	Throughput       float64

	Status        TrialStatus
	FailureReason string
}

// RunTrial executes one simulated auth session and always returns exactly
// one TrialResult. Any internal fault, including a panic in the
// simulation, is converted into a failed result; a single trial must
// never take down a sweep.
func RunTrial(cfg TrialConfig) (result TrialResult) {
	result = TrialResult{
		Family:           cfg.Family(),
		Defense:          cfg.Defense,
		Params:           cfg.Params,
		Seed:             cfg.Seed,
		Duration:         cfg.Duration,
		AttackerModel:    cfg.AttackerModel,
		Security:         math.NaN(),
		Usability:        math.NaN(),
		TimeToCompromise: math.NaN(),
		Throughput:       math.NaN(),
		Status:           TrialFailed,
	}

	defer func() {
		if r := recover(); r != nil {
			result.FailureReason = fmt.Sprintf("panic: %v", r)
			logrus.Errorf("trial %s seed=%d panicked: %v", result.Family, cfg.Seed, r)
		}
	}()

	metrics, err := runTrial(cfg)
	if err != nil {
		result.FailureReason = err.Error()
		logrus.Warnf("trial %s seed=%d failed: %v", result.Family, cfg.Seed, err)
		return result
	}

	result.Security = metrics.Security
	result.Usability = metrics.Usability
	result.TimeToCompromise = metrics.TimeToCompromise
	result.Throughput = metrics.Throughput
	result.Status = TrialSuccess
	result.FailureReason = ""
	return result
}

func runTrial(cfg TrialConfig) (TrialMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return TrialMetrics{}, err
	}

	clock := NewClock()
	rng := NewPartitionedRNG(NewTrialKey(cfg.Seed))

	store, err := OpenAccountStore()
	if err != nil {
		return TrialMetrics{}, err
	}
	defer func() { _ = store.Close() }()

	if err := store.AddUser("victim", "secret_password", clock.Now()); err != nil {
		return TrialMetrics{}, err
	}
	for i := 0; i < numNormalUsers; i++ {
		if err := store.AddUser(fmt.Sprintf("user%d", i), fmt.Sprintf("pass%d", i), clock.Now()); err != nil {
			return TrialMetrics{}, err
		}
	}

	defense, err := NewDefense(cfg.Defense, store, clock, cfg.Params)
	if err != nil {
		return TrialMetrics{}, err
	}

	var attackers []Actor
	switch cfg.AttackerModel {
	case AttackerCredStuffing:
		attackers = []Actor{NewCredentialStuffer(rng.ForSubsystem(SubsystemStuffer))}
	default:
		attackers = NewBaselineAttackers(rng.ForSubsystem(SubsystemAttacker))
	}
	actors := append(attackers, NewNormalUsers(numNormalUsers, true, rng)...)

	auth := NewAuthService(store, clock, defense)

	audit, err := runEventLoop(auth, clock, actors, cfg.Duration)
	if err != nil {
		return TrialMetrics{}, err
	}

	metrics := ComputeMetrics(audit, cfg.Duration)
	if err := metrics.validate(); err != nil {
		return TrialMetrics{}, err
	}
	return metrics, nil
}

// attemptEvent schedules one actor's next login attempt.
type attemptEvent struct {
	time  float64
	actor int // index into the actor slice
}

// eventHeap orders attempts by time, breaking ties by actor index so the
// processing order is fully deterministic.
type eventHeap []attemptEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].actor < h[j].actor
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(attemptEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// runEventLoop drains the attempt heap until the duration budget is
// exhausted or every actor is done, returning the full audit record.
func runEventLoop(auth *AuthService, clock *Clock, actors []Actor, duration float64) ([]AttemptRecord, error) {
	events := &eventHeap{}
	heap.Init(events)

	for i, actor := range actors {
		if t, ok := actor.NextAttempt(clock.Now()); ok {
			heap.Push(events, attemptEvent{time: t, actor: i})
		}
	}

	var audit []AttemptRecord
	processed := 0

	for events.Len() > 0 {
		ev := heap.Pop(events).(attemptEvent)
		if ev.time > duration {
			break
		}
		clock.Set(ev.time)

		actor := actors[ev.actor]
		username, password, ip := actor.Credentials()

		res, err := auth.Login(username, password, ip)
		if err != nil {
			return nil, fmt.Errorf("login for %s at %.2fs: %w", actor.Name(), clock.Now(), err)
		}

		outcome := AttemptFailed
		reason := res.Reason
		switch {
		case res.Success:
			outcome = AttemptSuccess
			reason = ""
		case res.Blocked:
			outcome = AttemptBlocked
		}
		actor.RecordResult(outcome)

		audit = append(audit, AttemptRecord{
			Timestamp: clock.Now(),
			Actor:     actor.Name(),
			Kind:      actor.Kind(),
			Username:  username,
			IP:        ip,
			Outcome:   outcome,
			Reason:    reason,
		})

		if t, ok := actor.NextAttempt(clock.Now()); ok && t <= duration {
			heap.Push(events, attemptEvent{time: t, actor: ev.actor})
		}

		processed++
		if processed%500 == 0 {
			logrus.Debugf("processed %d attempts (t=%.0fs)", processed, clock.Now())
		}
	}

	logrus.Debugf("trial complete: %d attempts over %.0fs", processed, duration)
	return audit, nil
}

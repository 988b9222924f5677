package sim

import (
	"fmt"
	"math/rand"
)

// ActorKind distinguishes adversarial from legitimate traffic in the
// audit record.
type ActorKind string

const (
	KindAttacker ActorKind = "attacker"
	KindUser     ActorKind = "user"
)

// AttemptOutcome classifies one processed login attempt.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFailed  AttemptOutcome = "failed"
	AttemptBlocked AttemptOutcome = "blocked"
)

// Actor is a traffic source: it schedules its own attempts and reacts to
// their outcomes.
type Actor interface {
	Name() string
	Kind() ActorKind

	// NextAttempt returns the absolute time of the actor's next login
	// attempt, or ok=false when the actor is done.
	NextAttempt(now float64) (t float64, ok bool)

	// Credentials produces the (username, password, ip) for the
	// attempt scheduled by NextAttempt.
	Credentials() (username, password, ip string)

	// RecordResult feeds the attempt outcome back into the actor.
	RecordResult(outcome AttemptOutcome)
}

// commonPasswords is the guess list shared by the attacker models. The
// victim's real password sits at the end so a patient brute-forcer can
// eventually win.
var commonPasswords = []string{
	"password", "123456", "12345678", "qwerty", "abc123",
	"monkey", "1234567", "letmein", "trustno1", "dragon",
	"baseball", "iloveyou", "master", "sunshine", "ashley",
	"bailey", "shadow", "123123", "654321", "superman",
	"secret_password",
}

// stufferGuesses is the smaller list a credential stuffer cycles when it
// lacks a leaked credential for an account.
var stufferGuesses = []string{
	"password", "123456", "12345678", "qwerty", "abc123",
	"monkey", "letmein", "dragon", "sunshine",
}

// BruteForceAttacker walks a password list against one target account at
// a fixed guess rate, stopping on success or list exhaustion. Blocked
// attempts do not consume a guess.
type BruteForceAttacker struct {
	name      string
	target    string
	passwords []string
	ip        string
	rate      float64 // guesses per second
	jitter    float64 // start-time offset, desynchronizes the botnet

	started   bool
	index     int
	succeeded bool
	blocked   int
}

func (a *BruteForceAttacker) Name() string    { return a.name }
func (a *BruteForceAttacker) Kind() ActorKind { return KindAttacker }

func (a *BruteForceAttacker) NextAttempt(now float64) (float64, bool) {
	if a.succeeded || a.index >= len(a.passwords) {
		return 0, false
	}
	if !a.started {
		a.started = true
		return now + a.jitter, true
	}
	return now + 1.0/a.rate, true
}

func (a *BruteForceAttacker) Credentials() (string, string, string) {
	return a.target, a.passwords[a.index], a.ip
}

func (a *BruteForceAttacker) RecordResult(outcome AttemptOutcome) {
	switch outcome {
	case AttemptBlocked:
		a.blocked++
	case AttemptSuccess:
		a.succeeded = true
		a.index++
	default:
		a.index++
	}
}

// credentialPair is one (username, password) guess in a stuffing list.
type credentialPair struct {
	username string
	password string
}

// CredentialStuffer cycles a leaked-credential list across many accounts,
// one guess per second, rotating its source IP per guess. It never stops
// on success: the point is to keep stressing the defense.
type CredentialStuffer struct {
	name  string
	pairs []credentialPair
	rate  float64

	index   int
	blocked int
}

// NewCredentialStuffer builds the stuffing list deterministically from
// the trial's stuffer RNG stream: fifty target accounts, each with a 15%
// chance of a correct leaked password, plus a sweep of the victim.
func NewCredentialStuffer(rng *rand.Rand) *CredentialStuffer {
	var pairs []credentialPair
	for i := 0; i < 50; i++ {
		password := stufferGuesses[rng.Intn(len(stufferGuesses))]
		if rng.Float64() < 0.15 {
			password = fmt.Sprintf("pass%d", i) // correct leaked credential
		}
		pairs = append(pairs, credentialPair{username: fmt.Sprintf("user%d", i), password: password})
	}
	for _, pwd := range stufferGuesses {
		pairs = append(pairs, credentialPair{username: "victim", password: pwd})
	}
	pairs = append(pairs, credentialPair{username: "victim", password: "secret_password"})

	return &CredentialStuffer{name: "cred_stuffer", pairs: pairs, rate: 1.0}
}

func (a *CredentialStuffer) Name() string    { return a.name }
func (a *CredentialStuffer) Kind() ActorKind { return KindAttacker }

func (a *CredentialStuffer) NextAttempt(now float64) (float64, bool) {
	if a.index >= len(a.pairs) {
		return 0, false
	}
	return now + 1.0/a.rate, true
}

func (a *CredentialStuffer) Credentials() (string, string, string) {
	pair := a.pairs[a.index]
	ip := fmt.Sprintf("10.1.%d.%d", a.index/256, a.index%256)
	return pair.username, pair.password, ip
}

func (a *CredentialStuffer) RecordResult(outcome AttemptOutcome) {
	if outcome == AttemptBlocked {
		a.blocked++
		return // a blocked attempt does not consume a credential
	}
	a.index++
}

// NormalUser logs in periodically, mistypes its password 60% of the time,
// retries a few times on failure, and backs off for a minute when the
// defense blocks it.
type NormalUser struct {
	name     string
	username string
	password string
	ip       string
	rng      *rand.Rand

	nextLogin    float64
	retryCount   int
	maxRetries   int
	timesBlocked int
}

func NewNormalUser(name, username, password, ip string, rng *rand.Rand) *NormalUser {
	return &NormalUser{
		name:       name,
		username:   username,
		password:   password,
		ip:         ip,
		rng:        rng,
		nextLogin:  rng.Float64() * 60,
		maxRetries: 4,
	}
}

func (u *NormalUser) Name() string    { return u.name }
func (u *NormalUser) Kind() ActorKind { return KindUser }

// NextAttempt ignores now: immediate retries reuse the previous attempt
// time, which keeps them adjacent in the event order.
func (u *NormalUser) NextAttempt(now float64) (float64, bool) {
	return u.nextLogin, true
}

func (u *NormalUser) Credentials() (string, string, string) {
	password := u.password
	if u.rng.Float64() < 0.60 {
		password += "X" // typo
	}
	return u.username, password, u.ip
}

func (u *NormalUser) RecordResult(outcome AttemptOutcome) {
	switch outcome {
	case AttemptBlocked:
		u.timesBlocked++
		u.nextLogin += 60
		u.retryCount = 0
	case AttemptSuccess:
		u.nextLogin += 30 + (u.rng.Float64()*20 - 10)
		u.retryCount = 0
	default:
		if u.retryCount < u.maxRetries {
			u.retryCount++ // retry immediately at the same timestamp
		} else {
			u.nextLogin += 3600
			u.retryCount = 0
		}
	}
}

// NewBaselineAttackers builds the baseline adversary mix: one fast
// brute-forcer plus a 20-bot distributed botnet, all targeting the
// victim account. Each attacker starts at a jittered offset within its
// first guess interval, drawn from the trial's attacker RNG stream, so
// the botnet does not fire in lockstep.
func NewBaselineAttackers(rng *rand.Rand) []Actor {
	attackers := []Actor{
		&BruteForceAttacker{
			name:      "brute_force",
			target:    "victim",
			passwords: commonPasswords,
			ip:        "10.0.0.1",
			rate:      2.0,
			jitter:    rng.Float64() / 2.0,
		},
	}
	for i := 0; i < 20; i++ {
		attackers = append(attackers, &BruteForceAttacker{
			name:      fmt.Sprintf("bot_%d", i),
			target:    "victim",
			passwords: commonPasswords[:5],
			ip:        fmt.Sprintf("10.0.%d.%d", i/256, i%256),
			rate:      0.1,
			jitter:    rng.Float64() / 0.1,
		})
	}
	return attackers
}

// NewNormalUsers builds n legitimate users. With sharedIP, the first 15
// share one address, modeling a NATed office or home network that per-IP
// defenses can collaterally damage.
func NewNormalUsers(n int, sharedIP bool, rng *PartitionedRNG) []Actor {
	users := make([]Actor, 0, n)
	for i := 0; i < n; i++ {
		ip := fmt.Sprintf("192.168.%d.%d", i/256, i%256)
		if sharedIP && i < 15 {
			ip = "192.168.1.100"
		}
		users = append(users, NewNormalUser(
			fmt.Sprintf("normal_user_%d", i),
			fmt.Sprintf("user%d", i),
			fmt.Sprintf("pass%d", i),
			ip,
			rng.ForSubsystem(SubsystemUser(i)),
		))
	}
	return users
}

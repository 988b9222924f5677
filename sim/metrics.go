package sim

import (
	"fmt"
	"math"
)

// Metric bounds. Both headline metrics are normalized to [MetricMin,
// MetricMax] with higher-is-better semantics: security is the fraction of
// adversarial attempts that did not compromise an account, usability the
// fraction of legitimate attempts the defense did not block. Out-of-range
// or NaN values fail the trial instead of corrupting aggregates.
const (
	MetricMin = 0.0
	MetricMax = 1.0
)

// AttemptRecord is one audited login attempt.
type AttemptRecord struct {
	Timestamp float64
	Actor     string
	Kind      ActorKind
	Username  string
	IP        string
	Outcome   AttemptOutcome
	Reason    string
}

// TrialMetrics summarizes one trial's audit record.
type TrialMetrics struct {
	Security  float64 // 1 - fraction of attacker attempts that succeeded
	Usability float64 // 1 - fraction of user attempts that were blocked

	Compromised          bool    // any attacker success on the victim account
	TimeToCompromise     float64 // earliest victim compromise, or duration if never
	NonVictimCompromised int     // distinct non-victim accounts an attacker entered
	BlockedUserFraction  float64 // fraction of distinct users blocked at least once
	Throughput           float64 // total attempts per simulated second
	TotalAttempts        int
}

// ComputeMetrics derives trial metrics from the audit record. A record
// with no attacker traffic scores full security; one with no user traffic
// scores full usability.
func ComputeMetrics(records []AttemptRecord, duration float64) TrialMetrics {
	m := TrialMetrics{
		TimeToCompromise: duration,
		TotalAttempts:    len(records),
	}

	var (
		attackerAttempts  int
		attackerSuccesses int
		userAttempts      int
		userBlocked       int
		firstCompromise   = math.Inf(1)
		compromisedAccts  = map[string]bool{}
		blockedUsers      = map[string]bool{}
		allUsers          = map[string]bool{}
	)

	for _, r := range records {
		switch r.Kind {
		case KindAttacker:
			attackerAttempts++
			if r.Outcome == AttemptSuccess {
				attackerSuccesses++
				if r.Username == "victim" {
					m.Compromised = true
					if r.Timestamp < firstCompromise {
						firstCompromise = r.Timestamp
					}
				} else {
					compromisedAccts[r.Username] = true
				}
			}
		case KindUser:
			userAttempts++
			allUsers[r.Actor] = true
			if r.Outcome == AttemptBlocked {
				userBlocked++
				blockedUsers[r.Actor] = true
			}
		}
	}

	m.Security = MetricMax
	if attackerAttempts > 0 {
		m.Security = 1 - float64(attackerSuccesses)/float64(attackerAttempts)
	}
	m.Usability = MetricMax
	if userAttempts > 0 {
		m.Usability = 1 - float64(userBlocked)/float64(userAttempts)
	}
	if m.Compromised {
		m.TimeToCompromise = firstCompromise
	}
	m.NonVictimCompromised = len(compromisedAccts)
	if len(allUsers) > 0 {
		m.BlockedUserFraction = float64(len(blockedUsers)) / float64(len(allUsers))
	}
	if duration > 0 {
		m.Throughput = float64(len(records)) / duration
	}
	return m
}

// validate enforces the metric bounds at the trial boundary.
func (m TrialMetrics) validate() error {
	for name, v := range map[string]float64{"security": m.Security, "usability": m.Usability} {
		if math.IsNaN(v) {
			return fmt.Errorf("%s metric is NaN", name)
		}
		if v < MetricMin || v > MetricMax {
			return fmt.Errorf("%s metric %v out of range [%v, %v]", name, v, MetricMin, MetricMax)
		}
	}
	return nil
}

package sim

import (
	"math"
	"testing"
)

func TestComputeMetrics_ClosedForm(t *testing.T) {
	records := []AttemptRecord{
		{Timestamp: 10, Actor: "brute_force", Kind: KindAttacker, Username: "victim", Outcome: AttemptFailed},
		{Timestamp: 20, Actor: "brute_force", Kind: KindAttacker, Username: "victim", Outcome: AttemptBlocked},
		{Timestamp: 30, Actor: "brute_force", Kind: KindAttacker, Username: "victim", Outcome: AttemptSuccess},
		{Timestamp: 40, Actor: "brute_force", Kind: KindAttacker, Username: "victim", Outcome: AttemptFailed},
		{Timestamp: 5, Actor: "normal_user_0", Kind: KindUser, Username: "user0", Outcome: AttemptSuccess},
		{Timestamp: 6, Actor: "normal_user_0", Kind: KindUser, Username: "user0", Outcome: AttemptBlocked},
		{Timestamp: 7, Actor: "normal_user_1", Kind: KindUser, Username: "user1", Outcome: AttemptFailed},
		{Timestamp: 8, Actor: "normal_user_1", Kind: KindUser, Username: "user1", Outcome: AttemptSuccess},
	}

	m := ComputeMetrics(records, 100)

	// 1 success out of 4 attacker attempts.
	if want := 1 - 0.25; m.Security != want {
		t.Errorf("Security = %v, want %v", m.Security, want)
	}
	// 1 blocked out of 4 user attempts.
	if want := 1 - 0.25; m.Usability != want {
		t.Errorf("Usability = %v, want %v", m.Usability, want)
	}
	if !m.Compromised {
		t.Error("Compromised = false, want true")
	}
	if m.TimeToCompromise != 30 {
		t.Errorf("TimeToCompromise = %v, want 30", m.TimeToCompromise)
	}
	// 1 of 2 distinct users was blocked at least once.
	if m.BlockedUserFraction != 0.5 {
		t.Errorf("BlockedUserFraction = %v, want 0.5", m.BlockedUserFraction)
	}
	if m.Throughput != 8.0/100 {
		t.Errorf("Throughput = %v, want %v", m.Throughput, 8.0/100)
	}
}

func TestComputeMetrics_NoTraffic(t *testing.T) {
	m := ComputeMetrics(nil, 3600)
	if m.Security != MetricMax || m.Usability != MetricMax {
		t.Errorf("empty record: security=%v usability=%v, want both %v", m.Security, m.Usability, MetricMax)
	}
	if m.TimeToCompromise != 3600 {
		t.Errorf("TimeToCompromise = %v, want the full duration", m.TimeToCompromise)
	}
	if err := m.validate(); err != nil {
		t.Errorf("empty-record metrics should be valid: %v", err)
	}
}

func TestComputeMetrics_NeverCompromised(t *testing.T) {
	records := []AttemptRecord{
		{Timestamp: 1, Actor: "bot_0", Kind: KindAttacker, Username: "victim", Outcome: AttemptBlocked},
		{Timestamp: 2, Actor: "bot_0", Kind: KindAttacker, Username: "victim", Outcome: AttemptFailed},
	}
	m := ComputeMetrics(records, 600)
	if m.Compromised {
		t.Error("Compromised = true, want false")
	}
	if m.TimeToCompromise != 600 {
		t.Errorf("TimeToCompromise = %v, want duration 600", m.TimeToCompromise)
	}
	if m.Security != 1.0 {
		t.Errorf("Security = %v, want 1.0", m.Security)
	}
}

func TestComputeMetrics_NonVictimCompromise(t *testing.T) {
	records := []AttemptRecord{
		{Timestamp: 1, Actor: "cred_stuffer", Kind: KindAttacker, Username: "user3", Outcome: AttemptSuccess},
		{Timestamp: 2, Actor: "cred_stuffer", Kind: KindAttacker, Username: "user7", Outcome: AttemptSuccess},
		{Timestamp: 3, Actor: "cred_stuffer", Kind: KindAttacker, Username: "user3", Outcome: AttemptSuccess},
	}
	m := ComputeMetrics(records, 60)
	if m.NonVictimCompromised != 2 {
		t.Errorf("NonVictimCompromised = %d, want 2 distinct accounts", m.NonVictimCompromised)
	}
	if m.Compromised {
		t.Error("victim was never compromised")
	}
}

func TestTrialMetrics_ValidateRejectsBadValues(t *testing.T) {
	good := TrialMetrics{Security: 0.5, Usability: 1.0}
	if err := good.validate(); err != nil {
		t.Errorf("valid metrics rejected: %v", err)
	}

	bad := []TrialMetrics{
		{Security: math.NaN(), Usability: 0.5},
		{Security: 0.5, Usability: math.NaN()},
		{Security: -0.1, Usability: 0.5},
		{Security: 0.5, Usability: 1.1},
	}
	for i, m := range bad {
		if err := m.validate(); err == nil {
			t.Errorf("case %d: invalid metrics accepted", i)
		}
	}
}

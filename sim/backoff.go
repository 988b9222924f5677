package sim

import "math"

// backoffDefense makes an account wait after each failure, doubling the
// wait per consecutive failure (base, 2*base, 4*base, ...) up to maxDelay.
// Success resets the sequence. Slows attackers without permanently locking
// accounts.
type backoffDefense struct {
	store     *AccountStore
	clock     *Clock
	baseDelay float64
	maxDelay  float64
}

func (d *backoffDefense) Check(username, ip string) (bool, string, error) {
	state, known, err := d.store.LoginState(username)
	if err != nil {
		return false, "", err
	}
	if !known {
		return true, "", nil
	}
	if state.LockedUntil != nil && d.clock.Now() < *state.LockedUntil {
		return false, "backoff", nil
	}
	return true, "", nil
}

func (d *backoffDefense) Observe(username, ip string, outcome Outcome) error {
	state, known, err := d.store.LoginState(username)
	if err != nil || !known {
		return err
	}
	switch outcome {
	case OutcomeSuccess:
		return d.store.ResetLoginState(username)
	case OutcomeFailure:
		failures := state.FailedAttempts + 1
		delay := math.Min(d.baseDelay*math.Pow(2, float64(failures-1)), d.maxDelay)
		until := d.clock.Now() + delay
		return d.store.RecordFailure(username, failures, &until, d.clock.Now())
	}
	return nil
}

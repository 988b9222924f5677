package sim

// lockoutDefense counts failed attempts per account and locks the account
// for lockoutTime seconds once the threshold is reached. A successful
// login resets the counter. Hard on attackers, but also on legitimate
// users who forget their password.
type lockoutDefense struct {
	store       *AccountStore
	clock       *Clock
	maxFailures int
	lockoutTime float64
}

func (d *lockoutDefense) Check(username, ip string) (bool, string, error) {
	state, known, err := d.store.LoginState(username)
	if err != nil {
		return false, "", err
	}
	if !known {
		// Unknown account: nothing to lock. The password check will
		// fail on its own.
		return true, "", nil
	}

	now := d.clock.Now()
	if state.LockedUntil != nil && now < *state.LockedUntil {
		return false, "locked", nil
	}
	if state.FailedAttempts >= d.maxFailures {
		if err := d.store.SetLockedUntil(username, now+d.lockoutTime); err != nil {
			return false, "", err
		}
		return false, "locked", nil
	}
	return true, "", nil
}

func (d *lockoutDefense) Observe(username, ip string, outcome Outcome) error {
	state, known, err := d.store.LoginState(username)
	if err != nil || !known {
		return err
	}
	switch outcome {
	case OutcomeSuccess:
		return d.store.ResetLoginState(username)
	case OutcomeFailure:
		return d.store.RecordFailure(username, state.FailedAttempts+1, state.LockedUntil, d.clock.Now())
	}
	return nil
}

package sim

// LoginResult is the outcome of one login request.
type LoginResult struct {
	Success bool
	Blocked bool
	Reason  string
}

// AuthService ties the defense policy and the account store together on
// the login path: check the defense, verify the password, feed the
// outcome back to the defense.
type AuthService struct {
	store   *AccountStore
	clock   *Clock
	defense Defense
}

// NewAuthService wires an auth service for one trial.
func NewAuthService(store *AccountStore, clock *Clock, defense Defense) *AuthService {
	return &AuthService{store: store, clock: clock, defense: defense}
}

// Login processes one attempt. Errors are infrastructure faults (store or
// defense failures), not wrong passwords; the caller treats them as a
// trial failure.
func (s *AuthService) Login(username, password, ip string) (LoginResult, error) {
	allowed, reason, err := s.defense.Check(username, ip)
	if err != nil {
		return LoginResult{}, err
	}
	if !allowed {
		return LoginResult{Blocked: true, Reason: reason}, nil
	}

	correct, err := s.store.CheckPassword(username, password)
	if err != nil {
		return LoginResult{}, err
	}

	outcome := OutcomeFailure
	if correct {
		outcome = OutcomeSuccess
	}
	if err := s.defense.Observe(username, ip, outcome); err != nil {
		return LoginResult{}, err
	}

	if correct {
		return LoginResult{Success: true}, nil
	}
	return LoginResult{Reason: "bad_password"}, nil
}

package sim

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// AccountStore holds user accounts and per-account login state for one
// trial. Each trial opens its own in-memory database; the store is private
// to the trial and is closed when the trial ends, so concurrent trials
// never contend.
type AccountStore struct {
	db *sql.DB
}

// LoginState tracks failure counting and lock/backoff windows for one
// account. LockedUntil is nil when no window is active.
type LoginState struct {
	FailedAttempts int
	LockedUntil    *float64
	LastFailure    *float64
}

// OpenAccountStore creates a fresh in-memory account store.
func OpenAccountStore() (*AccountStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}
	// In-memory sqlite: a second connection would see a different,
	// empty database, so pin the pool to one.
	db.SetMaxOpenConns(1)

	s := &AccountStore{db: db}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *AccountStore) createTables() error {
	stmts := []string{
		`CREATE TABLE users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at    REAL NOT NULL
		)`,
		`CREATE TABLE login_state (
			username          TEXT PRIMARY KEY,
			failed_attempts   INTEGER NOT NULL DEFAULT 0,
			locked_until      REAL,
			last_failure_time REAL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database.
func (s *AccountStore) Close() error {
	return s.db.Close()
}

// AddUser registers an account and initializes its login state.
func (s *AccountStore) AddUser(username, password string, createdAt float64) error {
	if _, err := s.db.Exec(
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, hashPassword(password), createdAt,
	); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}
	if _, err := s.db.Exec(
		"INSERT INTO login_state (username) VALUES (?)", username,
	); err != nil {
		return fmt.Errorf("init login state for %q: %w", username, err)
	}
	return nil
}

// CheckPassword reports whether password is correct for username.
// Unknown usernames simply fail the check.
func (s *AccountStore) CheckPassword(username, password string) (bool, error) {
	var stored string
	err := s.db.QueryRow(
		"SELECT password_hash FROM users WHERE username = ?", username,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check password for %q: %w", username, err)
	}
	return stored == hashPassword(password), nil
}

// LoginState returns the login state for username, or ok=false for
// accounts the store has never seen.
func (s *AccountStore) LoginState(username string) (LoginState, bool, error) {
	var (
		state       LoginState
		lockedUntil sql.NullFloat64
		lastFailure sql.NullFloat64
	)
	err := s.db.QueryRow(
		"SELECT failed_attempts, locked_until, last_failure_time FROM login_state WHERE username = ?",
		username,
	).Scan(&state.FailedAttempts, &lockedUntil, &lastFailure)
	if err == sql.ErrNoRows {
		return LoginState{}, false, nil
	}
	if err != nil {
		return LoginState{}, false, fmt.Errorf("login state for %q: %w", username, err)
	}
	if lockedUntil.Valid {
		state.LockedUntil = &lockedUntil.Float64
	}
	if lastFailure.Valid {
		state.LastFailure = &lastFailure.Float64
	}
	return state, true, nil
}

// ResetLoginState clears failure tracking after a successful login.
func (s *AccountStore) ResetLoginState(username string) error {
	if _, err := s.db.Exec(
		"UPDATE login_state SET failed_attempts = 0, locked_until = NULL, last_failure_time = NULL WHERE username = ?",
		username,
	); err != nil {
		return fmt.Errorf("reset login state for %q: %w", username, err)
	}
	return nil
}

// RecordFailure sets the failure count and (optionally) a lock window
// after a failed attempt at time now.
func (s *AccountStore) RecordFailure(username string, failedAttempts int, lockedUntil *float64, now float64) error {
	var until sql.NullFloat64
	if lockedUntil != nil {
		until = sql.NullFloat64{Float64: *lockedUntil, Valid: true}
	}
	if _, err := s.db.Exec(
		"UPDATE login_state SET failed_attempts = ?, locked_until = ?, last_failure_time = ? WHERE username = ?",
		failedAttempts, until, now, username,
	); err != nil {
		return fmt.Errorf("record failure for %q: %w", username, err)
	}
	return nil
}

// SetLockedUntil sets only the lock window, leaving counters untouched.
// Used by the lockout defense when the failure threshold is crossed at
// check time.
func (s *AccountStore) SetLockedUntil(username string, until float64) error {
	if _, err := s.db.Exec(
		"UPDATE login_state SET locked_until = ? WHERE username = ?", until, username,
	); err != nil {
		return fmt.Errorf("set lock for %q: %w", username, err)
	}
	return nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

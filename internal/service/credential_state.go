package service

import "sync"

// CredentialState serializes order creation and reconciliation per
// credential and tracks consecutive wallet query failures. The
// amount-uniqueness invariant and the read-balance-then-commit sequence
// both rely on holding the credential's lock.
type CredentialState struct {
	mu       sync.Mutex
	locks    map[int64]*sync.Mutex
	failures map[int64]int
}

// NewCredentialState creates an empty state registry.
func NewCredentialState() *CredentialState {
	return &CredentialState{
		locks:    make(map[int64]*sync.Mutex),
		failures: make(map[int64]int),
	}
}

func (s *CredentialState) lockFor(credentialID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[credentialID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[credentialID] = l
	}
	return l
}

// Lock acquires the credential's lock and returns the unlock function.
func (s *CredentialState) Lock(credentialID int64) func() {
	l := s.lockFor(credentialID)
	l.Lock()
	return l.Unlock
}

// RecordFailure bumps the consecutive wallet failure counter and
// returns the new count.
func (s *CredentialState) RecordFailure(credentialID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[credentialID]++
	return s.failures[credentialID]
}

// ResetFailures clears the consecutive failure counter after a
// successful wallet query.
func (s *CredentialState) ResetFailures(credentialID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, credentialID)
}

// Failures reports the current consecutive failure count.
func (s *CredentialState) Failures(credentialID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[credentialID]
}

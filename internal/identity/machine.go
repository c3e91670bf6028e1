// Package identity implements the sign-in state machine that resolves an
// operator to a known identity or routes them to enrollment.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/logging"
)

// State is a step of the sign-in flow.
type State string

const (
	StatePromptInitial     State = "prompt-initial"
	StateAwaitPassword     State = "await-password"
	StateUnrecognizedRetry State = "unrecognized-retry"
	StateEnrolling         State = "enrolling"
	StateAuthenticated     State = "authenticated"
)

var (
	ErrCredentialMismatch      = errors.New("credential mismatch")
	ErrUnknownIdentity         = errors.New("unknown identity")
	ErrVerificationUnavailable = errors.New("verification unavailable")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrBlankName               = errors.New("name is blank")
	ErrBusy                    = errors.New("verification already in flight")
)

// ErrorKind returns the stable kind label for a verification error,
// or "" if err is not one.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrCredentialMismatch):
		return "credential-mismatch"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown-identity"
	case errors.Is(err, ErrVerificationUnavailable):
		return "verification-unavailable"
	default:
		return ""
	}
}

// Machine is the sign-in state machine. It is safe for concurrent use;
// the verifier is called without holding the lock.
type Machine struct {
	mu        sync.Mutex
	state     State
	attempts  int
	name      string
	known     map[string]bool
	verifier  Verifier
	verifying bool
	lastErr   error
	identity  domain.Identity
	log       *logging.Logger
}

// New creates a machine in StatePromptInitial. knownNames is only a hint
// for choosing the next prompt; the verifier decides.
func New(verifier Verifier, knownNames []string, log *logging.Logger) *Machine {
	known := make(map[string]bool, len(knownNames))
	for _, n := range knownNames {
		known[n] = true
	}
	return &Machine{
		state:    StatePromptInitial,
		known:    known,
		verifier: verifier,
		log:      log.Sub("identity"),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns how many unrecognized names have been retried. It never decreases.
func (m *Machine) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Name returns the candidate name currently being signed in.
func (m *Machine) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// LastError returns the error from the most recent credential submission.
func (m *Machine) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Verifying reports whether a credential check is in flight.
func (m *Machine) Verifying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifying
}

// Identity returns the verified identity once authenticated.
func (m *Machine) Identity() (domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.state == StateAuthenticated
}

// SubmitName applies a candidate name. From the initial prompt or the retry
// prompt, a known name asks for the password; an unknown name asks once more
// and afterwards goes straight to enrollment. While enrolling, any name is
// accepted without a lookup.
func (m *Machine) SubmitName(name string) (State, error) {
	name = strings.TrimSpace(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return m.state, ErrBlankName
	}

	switch m.state {
	case StatePromptInitial, StateUnrecognizedRetry:
		m.name = name
		switch {
		case m.known[name]:
			m.moveTo(StateAwaitPassword)
		case m.attempts >= 1:
			m.moveTo(StateEnrolling)
		default:
			m.attempts++
			m.moveTo(StateUnrecognizedRetry)
		}
	case StateEnrolling:
		m.name = name
		m.moveTo(StateAwaitPassword)
	default:
		return m.state, fmt.Errorf("submit name in %s: %w", m.state, ErrInvalidTransition)
	}
	return m.state, nil
}

// StartEnrollment is the "first time here" shortcut from the initial prompt.
func (m *Machine) StartEnrollment() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePromptInitial {
		return m.state, fmt.Errorf("start enrollment in %s: %w", m.state, ErrInvalidTransition)
	}
	m.moveTo(StateEnrolling)
	return m.state, nil
}

// SubmitCredential asks the verifier to check the pending name. On success
// the machine becomes authenticated; on any failure it stays in
// StateAwaitPassword and returns one of ErrCredentialMismatch,
// ErrUnknownIdentity or ErrVerificationUnavailable.
func (m *Machine) SubmitCredential(ctx context.Context, credential string) (State, error) {
	m.mu.Lock()
	if m.state != StateAwaitPassword {
		state := m.state
		m.mu.Unlock()
		return state, fmt.Errorf("submit credential in %s: %w", state, ErrInvalidTransition)
	}
	if m.verifying {
		m.mu.Unlock()
		return StateAwaitPassword, ErrBusy
	}
	m.verifying = true
	name := m.name
	m.mu.Unlock()

	verdict := m.verifier.Verify(ctx, name, credential)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifying = false

	switch v := verdict.(type) {
	case Authenticated:
		if v.Name != "" {
			name = v.Name
		}
		m.identity = domain.Identity{Name: name, Credential: credential}
		m.lastErr = nil
		m.moveTo(StateAuthenticated)
		return m.state, nil
	case Rejected:
		if v.Reason == ReasonWrongPassword {
			m.lastErr = ErrCredentialMismatch
		} else {
			m.lastErr = ErrUnknownIdentity
		}
	case Unavailable:
		m.lastErr = ErrVerificationUnavailable
		if v.Err != nil {
			m.lastErr = fmt.Errorf("%w: %w", ErrVerificationUnavailable, v.Err)
		}
	default:
		m.lastErr = fmt.Errorf("%w: unexpected verdict %T", ErrVerificationUnavailable, verdict)
	}

	m.log.Info().Str("name", name).Str("kind", ErrorKind(m.lastErr)).Msg("verification failed")
	return m.state, m.lastErr
}

// moveTo must be called with mu held.
func (m *Machine) moveTo(next State) {
	m.log.Debug().Str("from", string(m.state)).Str("to", string(next)).Int("attempts", m.attempts).Msg("identity transition")
	m.state = next
}

// Package session sequences sign-in, persona choice and chat into a single
// forward-only flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soyeahso/lively/internal/animation"
	"github.com/soyeahso/lively/internal/chat"
	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/hooks"
	"github.com/soyeahso/lively/internal/identity"
	"github.com/soyeahso/lively/internal/logging"
	"github.com/soyeahso/lively/internal/persona"
)

// ErrWrongStage is returned when an operation does not belong to the current stage.
var ErrWrongStage = errors.New("operation not valid in current stage")

// Stage is one of VerifyingStage, PersonaStage or ChatStage.
type Stage interface {
	Name() string
}

// VerifyingStage is a snapshot of the sign-in flow.
type VerifyingStage struct {
	State     identity.State
	Candidate string
	Attempts  int
	LastError error
}

// PersonaStage waits for the operator to pick a persona.
type PersonaStage struct {
	Identity domain.Identity
	Options  []domain.Persona
}

// ChatStage is the final stage; Chat runs the conversation.
type ChatStage struct {
	Identity domain.Identity
	Persona  domain.Persona
	Chat     *chat.Manager
}

func (VerifyingStage) Name() string { return "verifying" }
func (PersonaStage) Name() string   { return "persona" }
func (ChatStage) Name() string      { return "chat" }

// Config wires the collaborators of a Composer.
type Config struct {
	Machine *identity.Machine
	Options []domain.Persona
	Backend chat.Backend
	// Hooks may be nil; a private manager is created.
	Hooks *hooks.Manager
	// Bridge may be nil when no surface is attached.
	Bridge *animation.Bridge
}

// Composer owns the current stage. Stages only move forward.
type Composer struct {
	mu      sync.Mutex
	machine *identity.Machine
	options []domain.Persona
	backend chat.Backend
	hooks   *hooks.Manager
	bridge  *animation.Bridge
	log     *logging.Logger
	root    *logging.Logger

	gate     *persona.Gate
	identity domain.Identity
	chat     *chat.Manager
	persona  domain.Persona
}

// New creates a composer in the verifying stage.
func New(cfg Config, log *logging.Logger) *Composer {
	hm := cfg.Hooks
	if hm == nil {
		hm = hooks.NewManager(log)
	}
	return &Composer{
		machine: cfg.Machine,
		options: cfg.Options,
		backend: cfg.Backend,
		hooks:   hm,
		bridge:  cfg.Bridge,
		log:     log.Sub("session"),
		root:    log,
	}
}

// Hooks returns the event bus the session publishes on.
func (c *Composer) Hooks() *hooks.Manager { return c.hooks }

// Current returns a snapshot of the current stage.
func (c *Composer) Current() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Composer) currentLocked() Stage {
	switch {
	case c.chat != nil:
		return ChatStage{Identity: c.identity, Persona: c.persona, Chat: c.chat}
	case c.gate != nil:
		return PersonaStage{Identity: c.identity, Options: c.gate.Options()}
	default:
		return VerifyingStage{
			State:     c.machine.State(),
			Candidate: c.machine.Name(),
			Attempts:  c.machine.Attempts(),
			LastError: c.machine.LastError(),
		}
	}
}

func (c *Composer) verifying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate == nil && c.chat == nil
}

// SubmitName forwards a candidate name to the sign-in machine.
func (c *Composer) SubmitName(name string) (Stage, error) {
	if !c.verifying() {
		return c.Current(), fmt.Errorf("submit name: %w", ErrWrongStage)
	}
	_, err := c.machine.SubmitName(name)
	return c.Current(), err
}

// StartEnrollment takes the "first time here" shortcut.
func (c *Composer) StartEnrollment() (Stage, error) {
	if !c.verifying() {
		return c.Current(), fmt.Errorf("start enrollment: %w", ErrWrongStage)
	}
	_, err := c.machine.StartEnrollment()
	return c.Current(), err
}

// SubmitCredential verifies the pending name. On success the session moves
// to the persona stage.
func (c *Composer) SubmitCredential(ctx context.Context, credential string) (Stage, error) {
	if !c.verifying() {
		return c.Current(), fmt.Errorf("submit credential: %w", ErrWrongStage)
	}
	if _, err := c.machine.SubmitCredential(ctx, credential); err != nil {
		return c.Current(), err
	}

	id, _ := c.machine.Identity()
	c.mu.Lock()
	c.identity = id
	c.gate = persona.NewGate(c.options)
	stage := c.currentLocked()
	c.mu.Unlock()

	c.log.Info().Str("user", id.Name).Msg("authenticated")
	c.hooks.Emit(ctx, hooks.EventStageChanged, map[string]any{"stage": stage.Name(), "user": id.Name})
	return stage, nil
}

// ChoosePersona binds the session to a persona and opens the chat. The
// returned manager still needs Hydrate before it accepts turns.
func (c *Composer) ChoosePersona(label string) (Stage, error) {
	c.mu.Lock()
	if c.gate == nil || c.chat != nil {
		stage := c.currentLocked()
		c.mu.Unlock()
		return stage, fmt.Errorf("choose persona: %w", ErrWrongStage)
	}
	p, err := c.gate.Choose(label)
	if err != nil {
		stage := c.currentLocked()
		c.mu.Unlock()
		return stage, err
	}
	if c.bridge != nil {
		c.bridge.Attach(c.hooks)
	}
	c.persona = p
	c.chat = chat.NewManager(c.identity, p, c.backend, c.hooks, c.root)
	stage := c.currentLocked()
	c.mu.Unlock()

	c.log.Info().
		Str("persona", p.Label).
		Int("intentHandlers", c.hooks.Count(hooks.EventIntentObserved)).
		Msg("persona chosen")
	c.hooks.Emit(context.Background(), hooks.EventStageChanged, map[string]any{"stage": stage.Name(), "persona": p.Label})
	return stage, nil
}

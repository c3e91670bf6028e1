// Package animation turns observed intents into one-way animation signals
// for the rendering surface.
package animation

import (
	"context"
	"errors"

	"github.com/soyeahso/lively/internal/hooks"
	"github.com/soyeahso/lively/internal/logging"
)

// Signal is a message for the rendering surface.
type Signal string

// SignalStart asks the surface to play its animation.
const SignalStart Signal = "start-animation"

// Kind classifies an intent label.
type Kind int

const (
	KindNone Kind = iota
	KindGreeting
	KindFarewell
)

func (k Kind) String() string {
	switch k {
	case KindGreeting:
		return "greeting"
	case KindFarewell:
		return "farewell"
	default:
		return "none"
	}
}

// Triggers maps intent labels to the animation kinds they start.
type Triggers struct {
	labels map[string]Kind
}

// NewTriggers builds a trigger set. A label listed in both sets is a greeting.
func NewTriggers(greeting, farewell []string) Triggers {
	labels := make(map[string]Kind, len(greeting)+len(farewell))
	for _, l := range farewell {
		labels[l] = KindFarewell
	}
	for _, l := range greeting {
		labels[l] = KindGreeting
	}
	return Triggers{labels: labels}
}

// Classify returns the kind for intent, or KindNone.
func (t Triggers) Classify(intent string) Kind {
	return t.labels[intent]
}

// Poster accepts signals without blocking.
type Poster interface {
	Post(Signal) bool
}

// Bridge posts a start signal for every greeting or farewell intent it sees.
// Repeats are not collapsed.
type Bridge struct {
	triggers Triggers
	out      Poster
	log      *logging.Logger
}

// NewBridge creates a bridge posting to out.
func NewBridge(triggers Triggers, out Poster, log *logging.Logger) *Bridge {
	return &Bridge{triggers: triggers, out: out, log: log.Sub("animation")}
}

// Observe reports whether intent triggered a signal.
func (b *Bridge) Observe(intent string) bool {
	kind := b.triggers.Classify(intent)
	if kind == KindNone {
		return false
	}
	if !b.out.Post(SignalStart) {
		b.log.Warn().Str("intent", intent).Msg("animation signal dropped, outbox full")
		return true
	}
	b.log.Debug().Str("intent", intent).Str("kind", kind.String()).Msg("animation signal posted")
	return true
}

const hookName = "animation-bridge"

// Attach subscribes the bridge to intent_observed events. Attaching again
// replaces the earlier subscription.
func (b *Bridge) Attach(hm *hooks.Manager) {
	hm.Off(hooks.EventIntentObserved, hookName)
	hm.On(hooks.EventIntentObserved, hookName, func(_ context.Context, p hooks.Payload) error {
		intent := p.String("intent")
		if intent == "" {
			return errors.New("intent_observed without intent")
		}
		b.Observe(intent)
		return nil
	})
}

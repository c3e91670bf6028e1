// Package chat owns the transcript of one authenticated, persona-bound
// conversation and runs its turns against the backend one at a time.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/hooks"
	"github.com/soyeahso/lively/internal/logging"
)

// FallbackText replaces the bot reply when a turn cannot reach the backend.
const FallbackText = "서버와 연결할 수 없습니다."

// Backend is the slice of the remote service a chat session talks to.
type Backend interface {
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatReply, error)
}

// Manager holds the ordered transcript and the current intent. At most one
// hydration or exchange is in flight at a time. A new Manager holds that
// slot until Hydrate has run, so history always lands before the first turn.
type Manager struct {
	mu       sync.Mutex
	identity domain.Identity
	persona  domain.Persona
	backend  Backend
	hooks    *hooks.Manager
	log      *logging.Logger
	now      func() time.Time

	messages []domain.Message
	intent   string
	busy     bool
	hydrated bool
}

// NewManager creates a manager bound to identity and persona for its lifetime.
// hooks may be nil.
func NewManager(identity domain.Identity, persona domain.Persona, backend Backend, hm *hooks.Manager, log *logging.Logger) *Manager {
	return &Manager{
		identity: identity,
		persona:  persona,
		backend:  backend,
		hooks:    hm,
		log:      log.Sub("chat").With("user", identity.Name),
		now:      time.Now,
		busy:     true,
	}
}

// Hydrate loads prior turns from the backend. It runs once; failures are
// logged and leave the transcript empty. The error is returned for display only.
func (m *Manager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.hydrated {
		m.mu.Unlock()
		return nil
	}
	m.hydrated = true
	m.mu.Unlock()

	entries, err := m.backend.History(ctx)

	m.mu.Lock()
	m.busy = false
	if err != nil {
		m.mu.Unlock()
		m.log.Warn().Err(err).Msg("history-unavailable")
		m.hooks.Emit(ctx, hooks.EventHistoryHydrated, map[string]any{"ok": false, "count": 0})
		return err
	}
	for _, e := range entries {
		m.messages = append(m.messages, domain.Message{
			ID:     uuid.New().String(),
			Role:   domain.RoleForSpeaker(e.Speaker),
			Text:   e.Content,
			Intent: e.Intent,
			At:     m.now(),
		})
	}
	m.mu.Unlock()

	m.log.Debug().Int("count", len(entries)).Msg("history hydrated")
	m.hooks.Emit(ctx, hooks.EventHistoryHydrated, map[string]any{"ok": true, "count": len(entries)})
	return nil
}

// Turn is a reserved exchange whose user message is already in the transcript.
type Turn struct {
	m    *Manager
	msg  domain.Message
	once sync.Once
	bot  domain.Message
}

// Submit echoes text into the transcript and reserves the in-flight slot.
// It returns nil without side effects for blank text or while busy.
func (m *Manager) Submit(text string) *Turn {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return nil
	}
	m.busy = true
	msg := domain.Message{
		ID:   uuid.New().String(),
		Role: domain.RoleUser,
		Text: text,
		At:   m.now(),
	}
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	return &Turn{m: m, msg: msg}
}

// Message returns the user message this turn sent.
func (t *Turn) Message() domain.Message { return t.msg }

// Exchange sends the turn and appends the reply, or an error message if the
// backend fails. It always releases the slot. Later calls return the first
// result without contacting the backend again.
func (t *Turn) Exchange(ctx context.Context) domain.Message {
	t.once.Do(func() { t.bot = t.m.exchange(ctx, t.msg) })
	return t.bot
}

func (m *Manager) exchange(ctx context.Context, msg domain.Message) domain.Message {
	m.hooks.Emit(ctx, hooks.EventTurnSent, map[string]any{"id": msg.ID, "text": msg.Text})

	reply, err := m.backend.Chat(ctx, domain.ChatRequest{Text: msg.Text, Persona: m.persona})

	bot := domain.Message{
		ID:   uuid.New().String(),
		Role: domain.RoleBot,
		At:   m.now(),
	}
	if err != nil {
		bot.Text = FallbackText
		bot.IsError = true
	} else {
		bot.Text = reply.Text
		bot.Intent = reply.Intent
	}

	m.mu.Lock()
	m.messages = append(m.messages, bot)
	if bot.HasIntent() {
		m.intent = bot.Intent
	}
	m.busy = false
	m.mu.Unlock()

	if err != nil {
		m.log.Warn().Err(err).Str("turn", msg.ID).Msg("chat-transport-failure")
		m.hooks.Emit(ctx, hooks.EventTurnFailed, map[string]any{"id": msg.ID, "error": err.Error()})
		return bot
	}

	m.log.Debug().Str("turn", msg.ID).Str("intent", bot.Intent).Msg("turn completed")
	m.hooks.Emit(ctx, hooks.EventTurnCompleted, map[string]any{"id": msg.ID, "intent": bot.Intent})
	if bot.HasIntent() {
		m.hooks.Emit(ctx, hooks.EventIntentObserved, map[string]any{"intent": bot.Intent})
	}
	return bot
}

// SendTurn submits text and runs the exchange to completion. It reports
// false if the turn was not accepted.
func (m *Manager) SendTurn(ctx context.Context, text string) bool {
	t := m.Submit(text)
	if t == nil {
		return false
	}
	t.Exchange(ctx)
	return true
}

// Messages returns a copy of the transcript.
func (m *Manager) Messages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.messages...)
}

// Busy reports whether a hydration or exchange holds the slot.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// CurrentIntent returns the most recent non-empty intent, or "".
func (m *Manager) CurrentIntent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intent
}

// Identity returns the verified user the session was opened for.
func (m *Manager) Identity() domain.Identity { return m.identity }

// Persona returns the persona every turn is sent with.
func (m *Manager) Persona() domain.Persona { return m.persona }

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/lively/internal/chat"
	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/identity"
	"github.com/soyeahso/lively/internal/logging"
	"github.com/soyeahso/lively/internal/persona"
	"github.com/soyeahso/lively/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	historyErr error
	chatErr    error
	reply      domain.ChatReply
}

func (s *stubBackend) History(context.Context) ([]domain.HistoryEntry, error) {
	return nil, s.historyErr
}

func (s *stubBackend) Chat(context.Context, domain.ChatRequest) (domain.ChatReply, error) {
	return s.reply, s.chatErr
}

func newTestModel(t *testing.T, b *stubBackend) Model {
	t.Helper()
	log := logging.New(nil, "silent")
	verifier := identity.VerifierFunc(func(_ context.Context, name, cred string) identity.Verdict {
		if name == "minji" && cred == "abcd" {
			return identity.Authenticated{Name: name}
		}
		if name == "minji" {
			return identity.Rejected{Reason: identity.ReasonWrongPassword}
		}
		return identity.Rejected{}
	})
	c := session.New(session.Config{
		Machine: identity.New(verifier, []string{"hohoyeol", "minji"}, log),
		Options: persona.Catalog(persona.ModePersona),
		Backend: b,
	}, log)
	return New(context.Background(), c)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and runs the resulting command through the model, the
// way the program loop would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case verifiedMsg, hydratedMsg, exchangedMsg:
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func typeAndEnter(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	return send(t, m, key("enter"))
}

func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m = typeAndEnter(t, m, "minji")
	return typeAndEnter(t, m, "abcd")
}

func TestModel_SignInAndChat(t *testing.T) {
	b := &stubBackend{reply: domain.ChatReply{Text: "반가워!", Intent: "인사"}}
	m := newTestModel(t, b)
	assert.Contains(t, m.View(), "이름을 알려주세요")

	m = typeAndEnter(t, m, "minji")
	assert.Contains(t, m.View(), "minji님 반가워요!")

	m = typeAndEnter(t, m, "abcd")
	require.IsType(t, session.PersonaStage{}, m.composer.Current())
	assert.Contains(t, m.View(), "친근한 친구")

	m = send(t, m, key("down"))
	m = send(t, m, key("enter"))
	stage, ok := m.composer.Current().(session.ChatStage)
	require.True(t, ok)
	assert.Equal(t, "지적인 조수", stage.Persona.Label)
	assert.False(t, stage.Chat.Busy())

	m = typeAndEnter(t, m, "안녕")
	msgs := stage.Chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "반가워!", msgs[1].Text)
	assert.Equal(t, "", m.input.Value())

	view := m.View()
	assert.Contains(t, view, "안녕")
	assert.Contains(t, view, "반가워!")
	assert.Contains(t, view, "📌 의도 분류: 인사")
}

func TestModel_IntentLineOnlyForLabelledReplies(t *testing.T) {
	b := &stubBackend{reply: domain.ChatReply{Text: "그렇구나"}}
	m := signIn(t, newTestModel(t, b))
	m = send(t, m, key("enter"))

	m = typeAndEnter(t, m, "날씨 어때")
	assert.Contains(t, m.View(), "그렇구나")
	assert.NotContains(t, m.View(), "의도 분류")

	b.reply = domain.ChatReply{Text: "잘 가!", Intent: "작별"}
	m = typeAndEnter(t, m, "이만 가볼게")
	view := m.View()
	assert.Contains(t, view, "📌 의도 분류: 작별")
	assert.Equal(t, 1, strings.Count(view, "의도 분류"))
}

func TestModel_WrongPasswordShowsNotice(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m = typeAndEnter(t, m, "minji")
	m = typeAndEnter(t, m, "nope")

	assert.Equal(t, "❌ 비밀번호가 틀렸어요.", m.notice)
	assert.IsType(t, session.VerifyingStage{}, m.composer.Current())
	assert.False(t, m.verifying)
}

func TestModel_UnknownNameFlow(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	m = typeAndEnter(t, m, "stranger")
	assert.Contains(t, m.View(), "모르는 이름이에요")

	m = typeAndEnter(t, m, "stranger")
	assert.Contains(t, m.View(), "우리 처음 만나네요")

	m = typeAndEnter(t, m, "stranger")
	m = typeAndEnter(t, m, "pw")
	assert.Equal(t, "❌ 사용자 없음", m.notice)
}

func TestModel_FirstTimeShortcut(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	m = send(t, m, key("ctrl+n"))
	vs := m.composer.Current().(session.VerifyingStage)
	assert.Equal(t, identity.StateEnrolling, vs.State)

	// Only valid from the initial prompt.
	m = send(t, m, key("ctrl+n"))
	assert.Equal(t, identity.StateEnrolling, m.composer.Current().(session.VerifyingStage).State)
}

func TestModel_BlankNameNotice(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m = typeAndEnter(t, m, "  ")
	assert.Equal(t, "이름을 입력해 주세요.", m.notice)
}

func TestModel_EnterIgnoredWhileVerifying(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m = typeAndEnter(t, m, "minji")

	m.input.SetValue("abcd")
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.verifying)
	assert.Contains(t, m.View(), "확인 중")

	_, again := m.Update(key("enter"))
	assert.Nil(t, again)
}

func TestModel_SendDisabledWhileBusy(t *testing.T) {
	m := newTestModel(t, &stubBackend{reply: domain.ChatReply{Text: "ok"}})
	m = signIn(t, m)
	m = send(t, m, key("enter"))
	stage := m.composer.Current().(session.ChatStage)

	m.input.SetValue("first")
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, stage.Chat.Busy())
	assert.Contains(t, m.View(), "답변을 기다리는 중")

	m.input.SetValue("second")
	_, blocked := m.Update(key("enter"))
	assert.Nil(t, blocked)

	cmd()
	assert.False(t, stage.Chat.Busy())
	assert.Len(t, stage.Chat.Messages(), 2)
}

func TestModel_ChatFailureShowsFallback(t *testing.T) {
	m := newTestModel(t, &stubBackend{chatErr: errors.New("down")})
	m = signIn(t, m)
	m = send(t, m, key("enter"))

	m = typeAndEnter(t, m, "hello")
	assert.Contains(t, m.View(), chat.FallbackText)
}

func TestModel_HistoryFailureNotice(t *testing.T) {
	m := newTestModel(t, &stubBackend{historyErr: errors.New("down")})
	m = signIn(t, m)
	m = send(t, m, key("enter"))

	assert.Equal(t, "이전 대화를 불러오지 못했어요.", m.notice)
	assert.IsType(t, session.ChatStage{}, m.composer.Current())
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"ctrl+c", "esc"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(t, &stubBackend{})
			_, cmd := m.Update(key(k))
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestModel_PersonaCursorBounds(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m = signIn(t, m)

	m = send(t, m, key("up"))
	assert.Equal(t, 0, m.cursor)
	for i := 0; i < 5; i++ {
		m = send(t, m, key("down"))
	}
	assert.Equal(t, 2, m.cursor)
}

// Package tui is the terminal front end: a bubbletea program that walks the
// operator through sign-in and persona choice, then runs the chat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/lively/internal/chat"
	"github.com/soyeahso/lively/internal/domain"
	"github.com/soyeahso/lively/internal/identity"
	"github.com/soyeahso/lively/internal/session"
)

// Results of blocking work, delivered back to the event loop.
type (
	verifiedMsg struct {
		stage session.Stage
		err   error
	}
	hydratedMsg struct {
		err error
	}
	exchangedMsg struct {
		reply domain.Message
	}
)

// Model is the bubbletea model over a session composer. All composer state
// changes that need the network run as commands and report back as messages.
type Model struct {
	ctx       context.Context
	composer  *session.Composer
	input     textinput.Model
	cursor    int
	verifying bool
	notice    string
	width     int
}

// New creates the model.
func New(ctx context.Context, c *session.Composer) Model {
	ti := textinput.New()
	ti.Placeholder = "이름 입력"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()
	return Model{ctx: ctx, composer: c, input: ti}
}

// Run starts the program and blocks until the operator quits.
func Run(ctx context.Context, c *session.Composer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, c), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		switch stage := m.composer.Current().(type) {
		case session.VerifyingStage:
			return m.updateVerifying(stage, msg)
		case session.PersonaStage:
			return m.updatePersona(stage, msg)
		case session.ChatStage:
			return m.updateChat(stage, msg)
		}

	case verifiedMsg:
		m.verifying = false
		if msg.err != nil {
			m.notice = describe(msg.err)
			return m, nil
		}
		m.notice = ""
		m.resetInput("")
		return m, nil

	case hydratedMsg:
		if msg.err != nil {
			m.notice = "이전 대화를 불러오지 못했어요."
		}
		return m, nil

	case exchangedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateVerifying(stage session.VerifyingStage, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+n":
		if stage.State != identity.StatePromptInitial {
			return m, nil
		}
		if _, err := m.composer.StartEnrollment(); err != nil {
			m.notice = describe(err)
			return m, nil
		}
		m.notice = ""
		m.resetInput("새 이름 입력")
		return m, nil

	case "enter":
		if m.verifying {
			return m, nil
		}
		value := m.input.Value()
		if stage.State == identity.StateAwaitPassword {
			m.verifying = true
			m.notice = ""
			m.input.SetValue("")
			return m, verifyCmd(m.ctx, m.composer, value)
		}
		next, err := m.composer.SubmitName(value)
		if err != nil {
			m.notice = describe(err)
			return m, nil
		}
		m.notice = ""
		vs, _ := next.(session.VerifyingStage)
		switch vs.State {
		case identity.StateAwaitPassword:
			m.resetInput("비밀번호 입력")
			m.input.EchoMode = textinput.EchoPassword
			m.input.EchoCharacter = '•'
		case identity.StateEnrolling:
			m.resetInput("새 이름 입력")
		default:
			m.resetInput("이름 다시 입력")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m Model) updatePersona(stage session.PersonaStage, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(stage.Options)-1 {
			m.cursor++
		}
	case "enter":
		if len(stage.Options) == 0 {
			return m, nil
		}
		next, err := m.composer.ChoosePersona(stage.Options[m.cursor].Label)
		if err != nil {
			m.notice = describe(err)
			return m, nil
		}
		m.notice = ""
		m.resetInput("메시지를 입력하세요")
		if cs, ok := next.(session.ChatStage); ok {
			return m, hydrateCmd(m.ctx, cs.Chat)
		}
	}
	return m, nil
}

func (m Model) updateChat(stage session.ChatStage, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "enter" {
		turn := stage.Chat.Submit(m.input.Value())
		if turn == nil {
			return m, nil
		}
		m.input.SetValue("")
		return m, exchangeCmd(m.ctx, turn)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *Model) resetInput(placeholder string) {
	m.input.SetValue("")
	m.input.EchoMode = textinput.EchoNormal
	if placeholder != "" {
		m.input.Placeholder = placeholder
	}
}

func verifyCmd(ctx context.Context, c *session.Composer, credential string) tea.Cmd {
	return func() tea.Msg {
		stage, err := c.SubmitCredential(ctx, credential)
		return verifiedMsg{stage: stage, err: err}
	}
}

func hydrateCmd(ctx context.Context, cm *chat.Manager) tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg{err: cm.Hydrate(ctx)}
	}
}

func exchangeCmd(ctx context.Context, t *chat.Turn) tea.Cmd {
	return func() tea.Msg {
		return exchangedMsg{reply: t.Exchange(ctx)}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, identity.ErrCredentialMismatch):
		return "❌ 비밀번호가 틀렸어요."
	case errors.Is(err, identity.ErrUnknownIdentity):
		return "❌ 사용자 없음"
	case errors.Is(err, identity.ErrVerificationUnavailable):
		return "❌ 서버 오류 발생"
	case errors.Is(err, identity.ErrBlankName):
		return "이름을 입력해 주세요."
	default:
		return fmt.Sprintf("❌ %v", err)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Lively"))
	b.WriteString("\n")

	switch stage := m.composer.Current().(type) {
	case session.VerifyingStage:
		m.viewVerifying(&b, stage)
	case session.PersonaStage:
		m.viewPersona(&b, stage)
	case session.ChatStage:
		m.viewChat(&b, stage)
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Esc로 종료"))
	return frameStyle.Render(b.String())
}

func (m Model) viewVerifying(b *strings.Builder, stage session.VerifyingStage) {
	switch stage.State {
	case identity.StatePromptInitial:
		b.WriteString("안녕하세요! 반가워요!\n")
		b.WriteString(hintStyle.Render("처음 오셨으면 Ctrl+N을 눌러주세요!"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("다시 오시나요? 이름을 알려주세요!"))
	case identity.StateUnrecognizedRetry:
		b.WriteString("음... 모르는 이름이에요.\n")
		b.WriteString(promptStyle.Render("다시 확인해주시겠어요?"))
	case identity.StateEnrolling:
		b.WriteString("우리 처음 만나네요! 반가워요!!\n")
		b.WriteString(promptStyle.Render("이름을 알려주시겠어요?"))
	case identity.StateAwaitPassword:
		fmt.Fprintf(b, "%s님 반가워요!\n", stage.Candidate)
		b.WriteString(promptStyle.Render("비밀번호는요?"))
	}
	b.WriteString("\n\n")
	if m.verifying {
		b.WriteString(hintStyle.Render("확인 중…"))
		return
	}
	b.WriteString(m.input.View())
}

func (m Model) viewPersona(b *strings.Builder, stage session.PersonaStage) {
	fmt.Fprintf(b, "%s님, 대화 상대를 골라주세요.\n\n", stage.Identity.Name)
	for i, p := range stage.Options {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + p.Label))
		} else {
			b.WriteString("  " + p.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓ 이동, Enter 선택"))
}

func (m Model) viewChat(b *strings.Builder, stage session.ChatStage) {
	cm := stage.Chat
	header := fmt.Sprintf("%s · %s", stage.Identity.Name, stage.Persona.Label)
	if intent := cm.CurrentIntent(); intent != "" {
		header += "  " + intentStyle.Render("#"+intent)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, msg := range cm.Messages() {
		switch {
		case msg.Role == domain.RoleUser:
			b.WriteString(userStyle.Render("나") + "  " + msg.Text)
		case msg.IsError:
			b.WriteString(botStyle.Render("봇") + "  " + errorStyle.Render(msg.Text))
		default:
			b.WriteString(botStyle.Render("봇") + "  " + msg.Text)
			if msg.HasIntent() {
				b.WriteString("\n    " + intentStyle.Render("📌 의도 분류: "+msg.Intent))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if cm.Busy() {
		b.WriteString(hintStyle.Render("답변을 기다리는 중…"))
		return
	}
	b.WriteString(m.input.View())
}

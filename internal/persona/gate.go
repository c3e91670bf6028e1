// Package persona holds the persona catalogs and the one-shot gate the
// operator picks a persona through after signing in.
package persona

import (
	"errors"
	"fmt"
	"sync"

	"github.com/soyeahso/lively/internal/domain"
)

var (
	ErrUnknownOption = errors.New("unknown persona option")
	ErrAlreadyChosen = errors.New("persona already chosen")
)

// Catalog mode names.
const (
	ModePersona = "persona"
	ModeStyle   = "style"
)

var personaCatalog = []domain.Persona{
	{Label: "친근한 친구", Instruction: "넌 내 친한 친구야. 반말로 친근하게 이야기해.", Kind: domain.SelectorSystemPrompt},
	{Label: "지적인 조수", Instruction: "넌 매우 똑똑하고 조용한 조수야. 존댓말로 공손하게 설명해줘.", Kind: domain.SelectorSystemPrompt},
	{Label: "장난꾸러기", Instruction: "넌 장난기 많은 캐릭터야. 농담을 자주 하고 자유롭게 말해.", Kind: domain.SelectorSystemPrompt},
}

// Style instructions are the labels themselves; the backend owns the prompt text.
var styleCatalog = []domain.Persona{
	{Label: "친구체", Instruction: "친구체", Kind: domain.SelectorStyle},
	{Label: "존댓말", Instruction: "존댓말", Kind: domain.SelectorStyle},
	{Label: "비즈니스", Instruction: "비즈니스", Kind: domain.SelectorStyle},
}

// Catalog returns a copy of the built-in options for mode.
// Unknown modes fall back to the persona catalog.
func Catalog(mode string) []domain.Persona {
	src := personaCatalog
	if mode == ModeStyle {
		src = styleCatalog
	}
	return append([]domain.Persona(nil), src...)
}

// Options resolves the option list for a gate: explicit options replace the
// catalog entirely. Options without a Kind inherit the mode's selector.
func Options(mode string, override []domain.Persona) []domain.Persona {
	if len(override) == 0 {
		return Catalog(mode)
	}
	kind := domain.SelectorSystemPrompt
	if mode == ModeStyle {
		kind = domain.SelectorStyle
	}
	out := make([]domain.Persona, len(override))
	for i, p := range override {
		if p.Kind == "" {
			p.Kind = kind
		}
		out[i] = p
	}
	return out
}

// Gate presents a closed list of personas and yields exactly one choice.
type Gate struct {
	mu      sync.Mutex
	options []domain.Persona
	chosen  *domain.Persona
}

// NewGate creates a gate over options.
func NewGate(options []domain.Persona) *Gate {
	return &Gate{options: append([]domain.Persona(nil), options...)}
}

// Options returns the options in presentation order.
func (g *Gate) Options() []domain.Persona {
	return append([]domain.Persona(nil), g.options...)
}

// Choose selects the option with the given label.
func (g *Gate) Choose(label string) (domain.Persona, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chosen != nil {
		return domain.Persona{}, ErrAlreadyChosen
	}
	for _, p := range g.options {
		if p.Label == label {
			g.chosen = &p
			return p, nil
		}
	}
	return domain.Persona{}, fmt.Errorf("%q: %w", label, ErrUnknownOption)
}

// Chosen returns the selected persona, if any.
func (g *Gate) Chosen() (domain.Persona, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chosen == nil {
		return domain.Persona{}, false
	}
	return *g.chosen, true
}

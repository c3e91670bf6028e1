package persona

import (
	"testing"

	"github.com/soyeahso/lively/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	tests := []struct {
		mode   string
		labels []string
		kind   domain.SelectorKind
	}{
		{ModePersona, []string{"친근한 친구", "지적인 조수", "장난꾸러기"}, domain.SelectorSystemPrompt},
		{ModeStyle, []string{"친구체", "존댓말", "비즈니스"}, domain.SelectorStyle},
		{"", []string{"친근한 친구", "지적인 조수", "장난꾸러기"}, domain.SelectorSystemPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			opts := Catalog(tt.mode)
			require.Len(t, opts, len(tt.labels))
			for i, p := range opts {
				assert.Equal(t, tt.labels[i], p.Label)
				assert.Equal(t, tt.kind, p.Kind)
				assert.NotEmpty(t, p.Instruction)
			}
		})
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	opts := Catalog(ModePersona)
	opts[0].Label = "changed"
	assert.Equal(t, "친근한 친구", Catalog(ModePersona)[0].Label)
}

func TestOptions_Override(t *testing.T) {
	opts := Options(ModeStyle, []domain.Persona{
		{Label: "Pirate", Instruction: "talk like a pirate"},
		{Label: "Poet", Instruction: "rhyme", Kind: domain.SelectorSystemPrompt},
	})

	require.Len(t, opts, 2)
	assert.Equal(t, domain.SelectorStyle, opts[0].Kind)
	assert.Equal(t, domain.SelectorSystemPrompt, opts[1].Kind)
}

func TestGate_Choose(t *testing.T) {
	g := NewGate(Catalog(ModePersona))

	p, err := g.Choose("지적인 조수")
	require.NoError(t, err)
	assert.Equal(t, "넌 매우 똑똑하고 조용한 조수야. 존댓말로 공손하게 설명해줘.", p.Instruction)

	chosen, ok := g.Chosen()
	require.True(t, ok)
	assert.Equal(t, p, chosen)
}

func TestGate_UnknownOption(t *testing.T) {
	g := NewGate(Catalog(ModeStyle))

	_, err := g.Choose("해적")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, ok := g.Chosen()
	assert.False(t, ok)

	_, err = g.Choose("존댓말")
	assert.NoError(t, err)
}

func TestGate_ChoosesOnce(t *testing.T) {
	g := NewGate(Catalog(ModeStyle))

	_, err := g.Choose("친구체")
	require.NoError(t, err)

	_, err = g.Choose("비즈니스")
	assert.ErrorIs(t, err, ErrAlreadyChosen)

	chosen, _ := g.Chosen()
	assert.Equal(t, "친구체", chosen.Label)
}

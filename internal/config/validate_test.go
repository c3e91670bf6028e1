package config

import (
	"testing"

	"github.com/soyeahso/lively/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_BackendURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"http", "http://localhost:8000", true},
		{"https", "https://chat.example.com", true},
		{"no scheme", "localhost:8000", false},
		{"ftp", "ftp://example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Backend.BaseURL = tt.url
			issues := Validate(&cfg)
			if tt.valid {
				assert.Empty(t, issues)
			} else {
				assert.Contains(t, issuePaths(issues), "backend.baseUrl")
			}
		})
	}
}

func TestValidate_ViewerAddr(t *testing.T) {
	cfg := Defaults()
	cfg.Viewer.Addr = "no-port"
	assert.Contains(t, issuePaths(Validate(&cfg)), "viewer.addr")

	cfg.Viewer.Enabled = false
	assert.NotContains(t, issuePaths(Validate(&cfg)), "viewer.addr", "disabled viewer is not checked")
}

func TestValidate_PersonaMode(t *testing.T) {
	cfg := Defaults()
	cfg.Persona.Mode = "mood"
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "persona.mode", issues[0].Path)
}

func TestValidate_PersonaOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Persona.Options = []domain.Persona{
		{Label: "a", Instruction: "x"},
		{Label: "a", Instruction: "y"},
		{Label: "", Instruction: ""},
	}
	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "persona.options[1].label")
	assert.Contains(t, paths, "persona.options[2].label")
	assert.Contains(t, paths, "persona.options[2].instruction")
}

func TestValidate_OverlappingAnimationLabels(t *testing.T) {
	cfg := Defaults()
	cfg.Animation.FarewellLabels = append(cfg.Animation.FarewellLabels, "greeting")
	assert.Contains(t, issuePaths(Validate(&cfg)), "animation.farewellLabels")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	assert.Contains(t, issuePaths(Validate(&cfg)), "logging.level")
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "viewer.addr", Message: "bad"}
	assert.Equal(t, "viewer.addr: bad", issue.String())
}

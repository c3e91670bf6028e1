package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "backend.baseUrl",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.Backend.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, ValidationIssue{
			Path:    "backend.baseUrl",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	}

	if cfg.Viewer.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Viewer.Addr); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "viewer.addr",
				Message: fmt.Sprintf("must be host:port, got %q", cfg.Viewer.Addr),
			})
		}
	}
	if cfg.Viewer.QueueSize < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "viewer.queueSize",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Viewer.QueueSize),
		})
	}

	validModes := []string{PersonaModePersona, PersonaModeStyle}
	if cfg.Persona.Mode != "" && !slices.Contains(validModes, cfg.Persona.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "persona.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validModes, cfg.Persona.Mode),
		})
	}

	seen := make(map[string]bool, len(cfg.Persona.Options))
	for i, opt := range cfg.Persona.Options {
		path := fmt.Sprintf("persona.options[%d]", i)
		if opt.Label == "" {
			issues = append(issues, ValidationIssue{Path: path + ".label", Message: "label is required"})
		}
		if opt.Instruction == "" {
			issues = append(issues, ValidationIssue{Path: path + ".instruction", Message: "instruction is required"})
		}
		if seen[opt.Label] {
			issues = append(issues, ValidationIssue{Path: path + ".label", Message: fmt.Sprintf("duplicate label %q", opt.Label)})
		}
		seen[opt.Label] = true
	}

	for _, l := range cfg.Animation.GreetingLabels {
		if slices.Contains(cfg.Animation.FarewellLabels, l) {
			issues = append(issues, ValidationIssue{
				Path:    "animation.farewellLabels",
				Message: fmt.Sprintf("label %q is also a greeting label", l),
			})
		}
	}

	validLogLevels := []string{"silent", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	if _, _, err := net.SplitHostPort(cfg.DevBackend.Addr); err != nil {
		issues = append(issues, ValidationIssue{
			Path:    "devBackend.addr",
			Message: fmt.Sprintf("must be host:port, got %q", cfg.DevBackend.Addr),
		})
	}

	return issues
}

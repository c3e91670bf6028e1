package config

import "github.com/soyeahso/lively/internal/domain"

// Config is the root configuration for Lively.
type Config struct {
	Backend    BackendConfig    `yaml:"backend,omitempty"`
	Viewer     ViewerConfig     `yaml:"viewer,omitempty"`
	Identity   IdentityConfig   `yaml:"identity,omitempty"`
	Persona    PersonaConfig    `yaml:"persona,omitempty"`
	Animation  AnimationConfig  `yaml:"animation,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	DevBackend DevBackendConfig `yaml:"devBackend,omitempty"`
}

// BackendConfig points at the chat/verification service.
type BackendConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// ViewerConfig controls the websocket endpoint the 3D viewer connects to.
type ViewerConfig struct {
	Enabled        bool     `yaml:"enabled,omitempty"`
	Addr           string   `yaml:"addr,omitempty"`
	QueueSize      int      `yaml:"queueSize,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// IdentityConfig holds the local known-name hint list.
// The backend verdict is authoritative; this list only picks the prompt.
type IdentityConfig struct {
	KnownNames []string `yaml:"knownNames,omitempty"`
}

// PersonaConfig selects the persona catalog offered after sign-in.
type PersonaConfig struct {
	Mode    string           `yaml:"mode,omitempty"` // "persona" | "style"
	Options []domain.Persona `yaml:"options,omitempty"`
}

// AnimationConfig lists the intent labels that start the avatar animation.
type AnimationConfig struct {
	GreetingLabels []string `yaml:"greetingLabels,omitempty"`
	FarewellLabels []string `yaml:"farewellLabels,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
}

// DevBackendConfig configures the local stand-in backend.
type DevBackendConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	DBPath     string `yaml:"dbPath,omitempty"`
	AutoEnroll bool   `yaml:"autoEnroll,omitempty"`

	// AllowedOrigins are browser origins allowed to call the API (CORS).
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

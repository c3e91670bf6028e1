package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Persona catalog modes.
const (
	PersonaModePersona = "persona"
	PersonaModeStyle   = "style"
)

const (
	defaultBackendURL = "http://localhost:8000"
	defaultViewerAddr = "127.0.0.1:18790"
	defaultDevAddr    = "127.0.0.1:8000"
	defaultQueueSize  = 8
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: defaultBackendURL,
		},
		Viewer: ViewerConfig{
			Enabled:   true,
			Addr:      defaultViewerAddr,
			QueueSize: defaultQueueSize,
		},
		Identity: IdentityConfig{
			KnownNames: []string{"hohoyeol", "minji"},
		},
		Persona: PersonaConfig{
			Mode: PersonaModePersona,
		},
		Animation: AnimationConfig{
			GreetingLabels: []string{"greeting", "인사"},
			FarewellLabels: []string{"farewell", "작별"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DevBackend: DevBackendConfig{
			Addr:           defaultDevAddr,
			AutoEnroll:     true,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

package config

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandAddressFields lets service addresses be written as ${ENV_VAR}.
func expandAddressFields(cfg *Config) {
	cfg.Backend.BaseURL = expandEnvVars(cfg.Backend.BaseURL)
	cfg.Viewer.Addr = expandEnvVars(cfg.Viewer.Addr)
	cfg.DevBackend.Addr = expandEnvVars(cfg.DevBackend.Addr)
	cfg.DevBackend.DBPath = expandEnvVars(cfg.DevBackend.DBPath)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	expandAddressFields(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders an effective config as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaultBackendURL
	}
	cfg.Backend.BaseURL = strings.TrimSuffix(cfg.Backend.BaseURL, "/")
	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = defaultViewerAddr
	}
	if cfg.Viewer.QueueSize == 0 {
		cfg.Viewer.QueueSize = defaultQueueSize
	}
	if cfg.Persona.Mode == "" {
		cfg.Persona.Mode = PersonaModePersona
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.DevBackend.Addr == "" {
		cfg.DevBackend.Addr = defaultDevAddr
	}
}

// applyEnvOverrides reads LIVELY_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIVELY_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("LIVELY_VIEWER_ADDR"); v != "" {
		cfg.Viewer.Addr = v
	}
	if v := os.Getenv("LIVELY_DEVBACKEND_ADDR"); v != "" {
		cfg.DevBackend.Addr = v
	}
	if v := os.Getenv("LIVELY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

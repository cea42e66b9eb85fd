package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrConfigNotFound = errors.New("configuration not found")

const (
	DefaultAPIURL  = "http://localhost:8080/api"
	DefaultTimeout = 30 * time.Second

	envAPIURL = "TICKETDESK_API_URL"
)

type Settings struct {
	API         APIConfig   `yaml:"api"`
	Web         WebConfig   `yaml:"web"`
	Preferences Preferences `yaml:"preferences"`
}

type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebConfig points at the browser dashboard opened by "dashboard".
type WebConfig struct {
	URL string `yaml:"url"`
}

type Preferences struct {
	// DefaultScope overrides the role based ticket scope when set.
	DefaultScope string `yaml:"default_scope"`
	NoColor      bool   `yaml:"no_color"`
}

func Default() *Settings {
	return &Settings{
		API: APIConfig{URL: DefaultAPIURL, Timeout: DefaultTimeout},
	}
}

func Load() (*Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	settings.applyEnv()
	if settings.API.Timeout <= 0 {
		settings.API.Timeout = DefaultTimeout
	}

	return settings, nil
}

func (s *Settings) applyEnv() {
	if v := os.Getenv(envAPIURL); v != "" {
		s.API.URL = v
	}
}

func (s *Settings) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return WritePrivate(path, data)
}

// WritePrivate writes data to path with 0600 permissions, creating the
// parent directory with 0700.
func WritePrivate(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	if err := file.Chmod(0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}

	return nil
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ticketdesk"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Set updates a single value addressed as section.field.
func (s *Settings) Set(key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok || strings.Contains(field, ".") {
		return errors.New("invalid key format. Use section.field (e.g., api.url)")
	}

	switch section {
	case "api":
		switch field {
		case "url":
			s.API.URL = value
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout: %w", err)
			}
			s.API.Timeout = d
		default:
			return fmt.Errorf("unknown api field: %s", field)
		}
	case "web":
		switch field {
		case "url":
			s.Web.URL = value
		default:
			return fmt.Errorf("unknown web field: %s", field)
		}
	case "preferences":
		switch field {
		case "default_scope":
			s.Preferences.DefaultScope = value
		case "no_color":
			s.Preferences.NoColor = value == "true" || value == "1" || value == "yes"
		default:
			return fmt.Errorf("unknown preferences field: %s", field)
		}
	default:
		return fmt.Errorf("unknown configuration section: %s", section)
	}

	return nil
}

func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	head := token[:4]
	tail := token[len(token)-4:]
	return fmt.Sprintf("%s***%s", head, tail)
}

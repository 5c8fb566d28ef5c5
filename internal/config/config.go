package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"channelos/internal/domain"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config models channelos.yml.
type Config struct {
	Defaults struct {
		Input domain.IdeaInput `yaml:"input"`
	} `yaml:"defaults"`
	Workflow struct {
		Owner string `yaml:"owner" validate:"required"`
	} `yaml:"workflow"`
	Storage  Storage   `yaml:"storage"`
	Server   Server    `yaml:"server"`
	Webhooks []Webhook `yaml:"webhooks" validate:"dive"`
}

type Storage struct {
	Backend string `yaml:"backend" validate:"required,oneof=sqlite redis"`
	Redis   Redis  `yaml:"redis"`
}

type Redis struct {
	Addr      string `yaml:"addr" validate:"required_if=Enabled true"`
	DB        int    `yaml:"db" validate:"gte=0,lte=15"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
	// Enabled is derived from storage.backend during validation.
	Enabled bool `yaml:"-"`
}

type Server struct {
	Addr      string    `yaml:"addr" validate:"required"`
	BasePath  string    `yaml:"base_path" validate:"required,startswith=/"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

// Webhook receives board events as JSON POSTs.
type Webhook struct {
	URL            string   `yaml:"url" validate:"required,url"`
	Events         []string `yaml:"events"`
	Secret         string   `yaml:"secret"`
	TimeoutSeconds int      `yaml:"timeout_seconds" validate:"gte=0"`
	Enabled        *bool    `yaml:"enabled"`
}

// Active reports whether the webhook should receive deliveries.
func (w Webhook) Active() bool {
	return w.Enabled == nil || *w.Enabled
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" validate:"gte=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.Redis.Enabled = c.Storage.Backend == BackendRedis
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s failed %q check", fieldPath(fe.Namespace()), fe.Tag())
		}
		return err
	}
	if in := c.Defaults.Input; in.Niche != "" {
		if _, ok := domain.ParseNiche(string(in.Niche)); !ok {
			return fmt.Errorf("config.defaults.input.niche %q is not a known niche", in.Niche)
		}
	}
	if in := c.Defaults.Input; in.Cadence != "" {
		if _, ok := domain.ParseCadence(string(in.Cadence)); !ok {
			return fmt.Errorf("config.defaults.input.cadence %q is not a known cadence", in.Cadence)
		}
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst == 0 {
		return fmt.Errorf("config.server.rate_limit.burst must be set when rps is positive")
	}
	return nil
}

// fieldPath turns "Config.Storage.Redis.Addr" into "storage.redis.addr".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with cos config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns Default() if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "channelos.yml")
}

// GenerateDefault returns default config YAML for the given default niche.
func GenerateDefault(niche domain.Niche) string {
	if niche == "" {
		niche = domain.NicheTechnology
	}
	return fmt.Sprintf(defaultTemplate, niche)
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(GenerateDefault(""))).Decode(&cfg)
	cfg.Storage.Redis.Enabled = cfg.Storage.Backend == BackendRedis
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing sections
// keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `defaults:
  input:
    niche: %s
    persona: Busy creators who want to automate their workflow
    goal: Publish consistently without burning out
    cadence: Weekly

workflow:
  owner: Unassigned

storage:
  backend: sqlite
  redis:
    addr: 127.0.0.1:6379
    db: 0
    namespace: default

server:
  addr: 127.0.0.1:8080
  base_path: /v0
  rate_limit:
    rps: 20
    burst: 40

# webhooks:
#   - url: https://hooks.example.com/channelos
#     events: [workflow.phase.moved, recipe.triggered]
#     secret: change-me
#     timeout_seconds: 5
`

package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/plume/integrators"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity              = 9.81
	DefaultDragCoefficient      = 0.01
	DefaultTimestep             = 0.016667 / 20
	DefaultIntegrator           = "euler"
	DefaultPenetrationThreshold = 0.05
	DefaultMaxBacktracks        = 16
	DefaultDampingRatio         = 1.0
	DefaultFrequency            = 10.0
	DefaultTolerance            = 0.2
	DefaultMaxIterations        = 100
)

type Config struct {
	Gravity              GravityConfig    `yaml:"gravity"`
	Drag                 DragConfig       `yaml:"drag"`
	Timestep             float64          `yaml:"timestep"`
	Integrator           string           `yaml:"integrator"`
	PenetrationThreshold float64          `yaml:"penetration_threshold"`
	MaxBacktracks        int              `yaml:"max_backtracks"`
	Constraints          ConstraintConfig `yaml:"constraints"`
}

type GravityConfig struct {
	Enabled bool    `yaml:"enabled"`
	G       float64 `yaml:"g"`
}

type DragConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Coefficient float64 `yaml:"coefficient"`
}

// ConstraintConfig drives the Baumgarte-stabilized constraint solve
type ConstraintConfig struct {
	Enabled       bool    `yaml:"enabled"`
	DampingRatio  float64 `yaml:"damping_ratio"`
	Frequency     float64 `yaml:"frequency"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Gravity: GravityConfig{
			Enabled: true,
			G:       DefaultGravity,
		},
		Drag: DragConfig{
			Enabled:     false,
			Coefficient: DefaultDragCoefficient,
		},
		Timestep:             DefaultTimestep,
		Integrator:           DefaultIntegrator,
		PenetrationThreshold: DefaultPenetrationThreshold,
		MaxBacktracks:        DefaultMaxBacktracks,
		Constraints: ConstraintConfig{
			Enabled:       false,
			DampingRatio:  DefaultDampingRatio,
			Frequency:     DefaultFrequency,
			Tolerance:     DefaultTolerance,
			MaxIterations: DefaultMaxIterations,
		},
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var problems []error

	if !(c.Timestep > 0) || math.IsInf(c.Timestep, 0) {
		problems = append(problems, fmt.Errorf("timestep must be positive, got %v", c.Timestep))
	}
	if _, err := integrators.ParseKind(c.Integrator); err != nil {
		problems = append(problems, err)
	}
	if !(c.PenetrationThreshold > 0) || math.IsInf(c.PenetrationThreshold, 0) {
		problems = append(problems, fmt.Errorf("penetration_threshold must be positive and finite, got %v", c.PenetrationThreshold))
	}
	if c.MaxBacktracks < 0 {
		problems = append(problems, fmt.Errorf("max_backtracks must not be negative, got %d", c.MaxBacktracks))
	}
	if !(c.Gravity.G >= 0) || math.IsInf(c.Gravity.G, 0) {
		problems = append(problems, fmt.Errorf("gravity.g must be finite and not negative, got %v", c.Gravity.G))
	}
	if !(c.Drag.Coefficient >= 0) || math.IsInf(c.Drag.Coefficient, 0) {
		problems = append(problems, fmt.Errorf("drag.coefficient must be finite and not negative, got %v", c.Drag.Coefficient))
	}
	if c.Constraints.Frequency < 0 || c.Constraints.DampingRatio < 0 {
		problems = append(problems, errors.New("constraints.frequency and constraints.damping_ratio must not be negative"))
	}
	if c.Constraints.Tolerance <= 0 || c.Constraints.MaxIterations <= 0 {
		problems = append(problems, errors.New("constraints.tolerance and constraints.max_iterations must be positive"))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %w", errors.Join(problems...))
	}
	return nil
}

// IntegratorKind parses the integrator name
func (c *Config) IntegratorKind() (integrators.Kind, error) {
	return integrators.ParseKind(c.Integrator)
}

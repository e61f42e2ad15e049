// Package config defines Meshachvetz's typed configuration (§6), loaded
// from YAML with strict field checking the way the teacher's
// cmd/default_config.go loads defaults.yaml, with an optional
// project-local TOML override layer on top.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LayerWeights are the three top-level aggregation weights (§4.4); they
// must sum to 1.
type LayerWeights struct {
	Student float64 `yaml:"student" toml:"student"`
	Class   float64 `yaml:"class" toml:"class"`
	School  float64 `yaml:"school" toml:"school"`
}

// StudentWeights are the intra-student-layer weights (§4.1); they must
// sum to 1.
type StudentWeights struct {
	Friends  float64 `yaml:"friends" toml:"friends"`
	Dislikes float64 `yaml:"dislikes" toml:"dislikes"`
}

// SchoolWeights are the intra-school-layer sub-metric weights (§4.3); they
// must sum to 1.
type SchoolWeights struct {
	Academic   float64 `yaml:"academic" toml:"academic"`
	Behavior   float64 `yaml:"behavior" toml:"behavior"`
	Size       float64 `yaml:"size" toml:"size"`
	Assistance float64 `yaml:"assistance" toml:"assistance"`
}

// NormalizationFactors convert a school sub-metric's population σ into a
// [0,100] penalty (§4.3).
type NormalizationFactors struct {
	AcademicFactor   float64 `yaml:"academic_factor" toml:"academic_factor"`
	BehaviorFactor   float64 `yaml:"behavior_factor" toml:"behavior_factor"`
	SizeFactor       float64 `yaml:"size_factor" toml:"size_factor"`
	AssistanceFactor float64 `yaml:"assistance_factor" toml:"assistance_factor"`
}

// OptimizerConfig holds the algorithm-agnostic search budget and the
// algorithm selector (§6).
type OptimizerConfig struct {
	Algorithm         string  `yaml:"algorithm" toml:"algorithm"` // "local_search" | "genetic" | "or_tools"
	MaxIterations     int     `yaml:"max_iterations" toml:"max_iterations"`
	TimeLimitSeconds  float64 `yaml:"time_limit_seconds" toml:"time_limit_seconds"`
	Seed              int64   `yaml:"seed" toml:"seed"`
	MaxPasses         int     `yaml:"max_passes" toml:"max_passes"`
	CandidateSample   int     `yaml:"candidate_sample" toml:"candidate_sample"`
}

// GeneticConfig holds C9's population parameters.
type GeneticConfig struct {
	PopulationSize  int     `yaml:"population_size" toml:"population_size"`
	MutationRate    float64 `yaml:"mutation_rate" toml:"mutation_rate"`
	TournamentSize  int     `yaml:"tournament_size" toml:"tournament_size"`
	Elitism         int     `yaml:"elitism" toml:"elitism"`
	MaxGenerations  int     `yaml:"max_generations" toml:"max_generations"`
	StagnationLimit int     `yaml:"stagnation_limit" toml:"stagnation_limit"`
}

// ORToolsConfig holds C10's CP surrogate parameters.
type ORToolsConfig struct {
	TargetClassSize   int     `yaml:"target_class_size" toml:"target_class_size"`
	ClassSizeTolerance int    `yaml:"class_size_tolerance" toml:"class_size_tolerance"`
	FriendWeight      float64 `yaml:"friend_weight" toml:"friend_weight"`
	ConflictPenalty   float64 `yaml:"conflict_penalty" toml:"conflict_penalty"`
	BalanceWeight     float64 `yaml:"balance_weight" toml:"balance_weight"`
}

// Config is the full typed configuration object (§6). It is built once by
// Load/Default, validated once by Validate, and then passed by shared
// immutable reference into the scorer and optimizer — apart from
// UpdateWeights, which re-validates, nothing in this package mutates a
// Config after construction.
type Config struct {
	LayerWeights         LayerWeights         `yaml:"layer_weights" toml:"layer_weights"`
	StudentWeights       StudentWeights       `yaml:"student_weights" toml:"student_weights"`
	SchoolWeights        SchoolWeights        `yaml:"school_weights" toml:"school_weights"`
	NormalizationFactors NormalizationFactors `yaml:"normalization" toml:"normalization"`
	PenaltyMultiplier    float64              `yaml:"penalty_multiplier" toml:"penalty_multiplier"`
	Optimizer            OptimizerConfig      `yaml:"optimizer" toml:"optimizer"`
	Genetic              GeneticConfig        `yaml:"genetic" toml:"genetic"`
	ORTools              ORToolsConfig        `yaml:"or_tools" toml:"or_tools"`
	LogLevel             string               `yaml:"log_level" toml:"log_level"`
}

// Default returns the documented default configuration: 50/20/30 layer
// weights, a clean 1.0 penalty multiplier, matching the "Default Config
// (50/20/30)" baseline demonstrated against the sample roster in the
// original project's scorer demo.
func Default() *Config {
	return &Config{
		LayerWeights:   LayerWeights{Student: 0.5, Class: 0.2, School: 0.3},
		StudentWeights: StudentWeights{Friends: 0.7, Dislikes: 0.3},
		SchoolWeights:  SchoolWeights{Academic: 0.3, Behavior: 0.3, Size: 0.2, Assistance: 0.2},
		NormalizationFactors: NormalizationFactors{
			AcademicFactor:   5,
			BehaviorFactor:   10,
			SizeFactor:       2,
			AssistanceFactor: 10,
		},
		PenaltyMultiplier: 1.0,
		Optimizer: OptimizerConfig{
			Algorithm:        "local_search",
			MaxIterations:    1000,
			TimeLimitSeconds: 60,
			Seed:             42,
			MaxPasses:        50,
			CandidateSample:  40,
		},
		Genetic: GeneticConfig{
			PopulationSize:  60,
			MutationRate:    0.05,
			TournamentSize:  3,
			Elitism:         2,
			MaxGenerations:  200,
			StagnationLimit: 30,
		},
		ORTools: ORToolsConfig{
			TargetClassSize:    25,
			ClassSizeTolerance: 3,
			FriendWeight:       10,
			ConflictPenalty:    20,
			BalanceWeight:      5,
		},
		LogLevel: "normal",
	}
}

// Load reads a YAML configuration file with strict field checking
// (teacher idiom: cmd/default_config.go's decoder.KnownFields(true)),
// starting from Default() so unset sections keep their defaults, then
// layers the TOML override file at overridePath (conventionally
// ".meshachvetz.toml") on top if overridePath is non-empty.
func Load(yamlPath, overridePath string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", yamlPath, err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", yamlPath, err)
		}
	}

	if overridePath != "" {
		if _, err := toml.DecodeFile(overridePath, cfg); err != nil {
			return nil, fmt.Errorf("parsing override %s: %w", overridePath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every weight group sums to 1 (within floating-point
// tolerance) and that normalization/optimizer parameters are sane. It is
// called once at construction (Load/Default's callers should call it
// after any manual field edits, e.g. UpdateWeights below).
func (c *Config) Validate() error {
	if err := sumsToOne("layer_weights", c.LayerWeights.Student, c.LayerWeights.Class, c.LayerWeights.School); err != nil {
		return err
	}
	if err := sumsToOne("student_weights", c.StudentWeights.Friends, c.StudentWeights.Dislikes); err != nil {
		return err
	}
	if err := sumsToOne("school_weights", c.SchoolWeights.Academic, c.SchoolWeights.Behavior, c.SchoolWeights.Size, c.SchoolWeights.Assistance); err != nil {
		return err
	}
	n := c.NormalizationFactors
	if n.AcademicFactor < 0 || n.BehaviorFactor < 0 || n.SizeFactor < 0 || n.AssistanceFactor < 0 {
		return fmt.Errorf("normalization factors must be >= 0, got %+v", n)
	}
	if c.PenaltyMultiplier < 0 {
		return fmt.Errorf("penalty_multiplier must be >= 0, got %v", c.PenaltyMultiplier)
	}
	switch c.Optimizer.Algorithm {
	case "local_search", "genetic", "or_tools":
	default:
		return fmt.Errorf("optimizer.algorithm %q must be one of local_search, genetic, or_tools", c.Optimizer.Algorithm)
	}
	switch c.LogLevel {
	case "minimal", "normal", "detailed", "debug":
	default:
		return fmt.Errorf("log_level %q must be one of minimal, normal, detailed, debug", c.LogLevel)
	}
	return nil
}

const weightTolerance = 1e-6

func sumsToOne(name string, weights ...float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum < 1-weightTolerance || sum > 1+weightTolerance {
		return fmt.Errorf("%s must sum to 1, got %v", name, sum)
	}
	return nil
}

// UpdateWeights mirrors the original project's Config.update_weights
// convenience method (seen driving the "Student-Focused"/"Balance-Focused"
// demo comparisons): it overwrites the three layer weights and
// re-validates.
func (c *Config) UpdateWeights(student, class, school float64) error {
	prev := c.LayerWeights
	c.LayerWeights = LayerWeights{Student: student, Class: class, School: school}
	if err := c.Validate(); err != nil {
		c.LayerWeights = prev
		return err
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsLayerWeightsNotSummingToOne(t *testing.T) {
	cfg := Default()
	cfg.LayerWeights = LayerWeights{Student: 0.5, Class: 0.5, School: 0.5}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer_weights")
}

func TestValidate_RejectsUnknownAlgorithm(t *testing.T) {
	cfg := Default()
	cfg.Optimizer.Algorithm = "simulated_annealing"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestUpdateWeights_RejectsInvalidAndKeepsPrevious(t *testing.T) {
	cfg := Default()
	original := cfg.LayerWeights
	err := cfg.UpdateWeights(0.9, 0.9, 0.9)
	require.Error(t, err)
	assert.Equal(t, original, cfg.LayerWeights, "invalid update must not stick")
}

func TestLoad_StrictYAMLRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("typo_field: true\n"), 0o644))

	_, err := Load(path, "")
	require.Error(t, err, "unknown top-level field must be rejected by KnownFields(true)")
}

func TestLoad_YAMLOverridesDefaultWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "layer_weights:\n  student: 0.8\n  class: 0.1\n  school: 0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.LayerWeights.Student)
}

func TestLoad_TOMLOverrideLayersOnTopOfYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("log_level: debug\n"), 0o644))
	tomlPath := filepath.Join(dir, ".meshachvetz.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("log_level = \"detailed\"\n"), 0o644))

	cfg, err := Load(yamlPath, tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "detailed", cfg.LogLevel, "toml override must win over yaml")
}

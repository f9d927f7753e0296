// Package config loads YAML configuration from ~/.nekro/config.yaml.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nekrovoice/nekro-go/assets"
	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/pkg/filesystem"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// FileLoader loads YAML configuration from ~/.nekro/config.yaml (overridable
// via NEKRO_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is replaced with the
// written defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := writeDefault(path); err != nil {
				return domain.Config{}, err
			}
			return DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Path returns the config file location the loader resolves to.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("NEKRO_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".nekro", "config.yaml")
}

// writeDefault materializes the embedded commented template so a first run
// leaves an editable file behind.
func writeDefault(path string) error {
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// DefaultConfig is the configuration written on first run.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Wake: domain.WakeSettings{
			Phrase:    domain.DefaultWakePhrase,
			Threshold: domain.DefaultWakeThreshold,
		},
		Learning: domain.LearningSettings{
			SimilarityThreshold: domain.DefaultSimilarityThreshold,
			RecencyWindow:       domain.DefaultRecencyWindow,
			RetentionDays:       domain.DefaultRetentionDays,
		},
		Storage: domain.StorageSettings{
			Path: filepath.Join(filesystem.UserHomeDir(), ".nekro", "training.db"),
		},
		Interpreter: domain.ModelDefinition{
			Endpoint:   domain.DefaultInterpreterEndpoint,
			AuthEnvVar: domain.DefaultAuthEnvVar,
			ModelID:    domain.DefaultInterpreterModel,
			MaxTokens:  domain.DefaultMaxTokens,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Wake.Phrase == "" {
		cfg.Wake.Phrase = domain.DefaultWakePhrase
	}
	if cfg.Wake.Threshold == 0 {
		cfg.Wake.Threshold = domain.DefaultWakeThreshold
	}
	if cfg.Learning.SimilarityThreshold == 0 {
		cfg.Learning.SimilarityThreshold = domain.DefaultSimilarityThreshold
	}
	if cfg.Learning.RecencyWindow == 0 {
		cfg.Learning.RecencyWindow = domain.DefaultRecencyWindow
	}
	if cfg.Learning.RetentionDays == 0 {
		cfg.Learning.RetentionDays = domain.DefaultRetentionDays
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(filesystem.UserHomeDir(), ".nekro", "training.db")
	}
	if cfg.Interpreter.Endpoint == "" {
		cfg.Interpreter.Endpoint = domain.DefaultInterpreterEndpoint
	}
	if cfg.Interpreter.AuthEnvVar == "" {
		cfg.Interpreter.AuthEnvVar = domain.DefaultAuthEnvVar
	}
	if cfg.Interpreter.ModelID == "" {
		cfg.Interpreter.ModelID = domain.DefaultInterpreterModel
	}
	if cfg.Interpreter.MaxTokens == 0 {
		cfg.Interpreter.MaxTokens = domain.DefaultMaxTokens
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)

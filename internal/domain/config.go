package domain

// Config mirrors ~/.nekro/config.yaml.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version"`
	Wake                WakeSettings     `yaml:"wake"`
	Learning            LearningSettings `yaml:"learning"`
	Storage             StorageSettings  `yaml:"storage"`
	Interpreter         ModelDefinition  `yaml:"interpreter"`
}

// WakeSettings configures activation-phrase detection.
type WakeSettings struct {
	Phrase    string  `yaml:"phrase"`
	Threshold float64 `yaml:"threshold"`
}

// LearningSettings tunes similarity-based command recall.
type LearningSettings struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	RecencyWindow       int     `yaml:"recency_window"`
	RetentionDays       int     `yaml:"retention_days"`
}

// StorageSettings locates the durable training store.
type StorageSettings struct {
	Path string `yaml:"path"`
}

// ModelDefinition describes the external interpretation service endpoint with
// its authentication and generation parameters.
type ModelDefinition struct {
	Endpoint   string          `yaml:"endpoint"`
	AuthEnvVar string          `yaml:"auth_env_var"`
	ModelID    string          `yaml:"model_id"`
	MaxTokens  int             `yaml:"max_tokens"`
	Prompt     []PromptMessage `yaml:"prompt,omitempty"`
}

// PromptMessage follows the role/content pair required by chat APIs. A
// configured system message overrides the built-in interpreter prompt.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

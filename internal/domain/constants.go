package domain

import "time"

// File permission constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Wake-word defaults
const (
	// DefaultWakePhrase is the activation phrase checked against transcripts
	DefaultWakePhrase = "nekro"
	// DefaultWakeThreshold is the minimum fuzzy token score that activates
	DefaultWakeThreshold = 0.7
	// MinWakeTokenLength excludes short tokens from fuzzy comparison
	MinWakeTokenLength = 3
)

// Learning defaults
const (
	// DefaultSimilarityThreshold gates canonical-form collapse during normalization
	DefaultSimilarityThreshold = 0.7
	// DefaultRecencyWindow is how many recent successful commands are recalled
	DefaultRecencyWindow = 50
	// DefaultRetentionDays is how long command history is retained
	DefaultRetentionDays = 90
	// DefaultSuggestionLimit caps learning suggestions derived from unknown commands
	DefaultSuggestionLimit = 3
	// DefaultHistoryLimit is the default number of records to display
	DefaultHistoryLimit = 20
)

// Interpreter defaults
const (
	// DefaultInterpreterEndpoint is the messages endpoint of the interpretation service
	DefaultInterpreterEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultInterpreterModel is the model identifier sent with each request
	DefaultInterpreterModel = "claude-3-5-sonnet-20241022"
	// DefaultAuthEnvVar names the environment variable holding the credential
	DefaultAuthEnvVar = "ANTHROPIC_API_KEY"
	// DefaultMaxTokens is the token budget per interpretation request
	DefaultMaxTokens = 1024
	// DefaultHTTPClientTimeout bounds one interpretation round trip
	DefaultHTTPClientTimeout = 30 * time.Second
	// CredentialPrefix is the provider-specific prefix a credential must carry
	CredentialPrefix = "sk-ant-"
	// MinCredentialLength is the shortest credential accepted as plausible
	MinCredentialLength = 20
)

// Time formats
const (
	// TimestampFormat is the storage timestamp format. Fractional seconds are
	// zero-padded to a fixed width so UTC timestamps sort correctly as text.
	TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

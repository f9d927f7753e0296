// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). The pipeline depends on these
// abstractions, never on concrete storage, HTTP or CLI implementations.
package ports

import (
	"context"
	"time"

	"github.com/nekrovoice/nekro-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.nekro/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// TrainingRepository is the durable storage collaborator for command history,
// taught mappings and frequency counters. Each operation is individually
// atomic; no cross-operation transactions are offered.
type TrainingRepository interface {
	Insert(domain.CommandRecord) error
	// SetFeedback updates the most recent record whose text matches exactly.
	// Absence of a match is not an error.
	SetFeedback(text string, fb domain.Feedback) error
	Recent(limit int) ([]domain.CommandRecord, error)
	RecentSuccessful(limit int) ([]domain.CommandRecord, error)
	RecentByType(commandType string, limit int) ([]domain.CommandRecord, error)
	RecentByContext(contextTag string, limit int) ([]domain.CommandRecord, error)
	CountAll() (int, error)
	CountSuccessful() (int, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)

	Teach(domain.TaughtCommand) error
	LookupTaught(command string) (string, bool, error)
	TaughtCount() (int, error)

	IncrementFrequency(command string) error
	TopFrequent(limit int) ([]domain.FrequencyEntry, error)

	Close() error
}

// LearningStore is the in-process learning engine surface consumed by the
// pipeline and the interpretation bridge. Write operations are fire-and-forget
// relative to the caller.
type LearningStore interface {
	Record(text, commandType string, success bool)
	RecordUnknown(text string)
	ProvideFeedback(text string, positive bool)
	Teach(command, action string)
	LookupTaught(command string) (string, bool)
	Normalize(raw string) string
	RecentSuccessful(limit int) []domain.CommandRecord
	UnknownSample(limit int) []domain.CommandRecord
	TotalCount() int
	SuccessCount() int
	Accuracy() float64
	TopFrequent(limit int) []domain.FrequencyEntry
}

// InterpretationOutcome is the single terminal value of one escalation.
type InterpretationOutcome struct {
	Result domain.Interpretation
	Err    error
}

// Interpreter escalates an unmatched raw utterance to the external
// interpretation service. The returned channel yields exactly one outcome;
// cancellation mid-call is not supported.
type Interpreter interface {
	Available() bool
	Interpret(ctx context.Context, raw string) <-chan InterpretationOutcome
}

// ActionExecutor is the execution collaborator: given a resolved command it
// performs the real-world action and reports a user-visible message.
type ActionExecutor interface {
	Execute(ctx context.Context, res domain.Resolution) (string, error)
}

// ResultCallback receives the user-visible outcome of one processed
// utterance. Every pipeline run terminates in at most one OnError or
// OnUnknown, possibly preceded by progress OnResult notices.
type ResultCallback interface {
	OnResult(message string)
	OnError(message string)
	OnUnknown(command string)
}

// TranscriptSource is the speech capture collaborator: it supplies one
// finalized transcription per utterance. io.EOF ends the listen loop.
type TranscriptSource interface {
	Next() (string, error)
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}

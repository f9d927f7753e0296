// Package learning implements command normalization and the adaptive learning
// store: history, feedback, frequency counters and taught mappings.
package learning

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// writeQueueSize bounds the fire-and-forget persistence queue. A full queue
// drops the write rather than blocking the pipeline; learning is best-effort.
const writeQueueSize = 256

// Engine is the adaptive learning store. All writes flow through a single
// background worker so the public calls return without waiting on durable
// storage; reads go straight to the repository.
type Engine struct {
	repo ports.TrainingRepository
	log  ports.Logger

	threshold float64
	window    int

	now func() time.Time

	queue chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option tunes Engine construction.
type Option func(*Engine)

// WithThreshold overrides the similarity threshold for canonical collapse.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) { e.threshold = threshold }
}

// WithRecencyWindow overrides how many recent successful commands are
// consulted during normalization.
func WithRecencyWindow(window int) Option {
	return func(e *Engine) { e.window = window }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds the engine and starts its write worker.
func NewEngine(repo ports.TrainingRepository, log ports.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		log:       log,
		threshold: domain.DefaultSimilarityThreshold,
		window:    domain.DefaultRecencyWindow,
		now:       time.Now,
		queue:     make(chan func(), writeQueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.wg.Add(1)
	go e.worker()
	return e
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for op := range e.queue {
		op()
	}
}

// enqueue hands a persistence operation to the worker without blocking.
// Writes after Close are dropped.
func (e *Engine) enqueue(op func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.log.Warn("learning write dropped, engine closed", nil)
		return
	}
	select {
	case e.queue <- op:
	default:
		e.log.Warn("learning write dropped, queue full", nil)
	}
}

// Normalize produces the canonical form of a raw command: cleaned of filler
// and, when a recent successful command scores above the threshold, collapsed
// onto that historical phrasing.
func (e *Engine) Normalize(raw string) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return cleaned
	}
	recent := e.RecentSuccessful(e.window)
	history := make([]string, 0, len(recent))
	for _, rec := range recent {
		history = append(history, rec.Text)
	}
	return canonicalize(cleaned, history, e.threshold)
}

// Record appends a command record with the current timestamp and derived
// situational context, and bumps the frequency counter. Fire-and-forget.
func (e *Engine) Record(text, commandType string, success bool) {
	at := e.now()
	rec := domain.CommandRecord{
		Text:      text,
		Type:      commandType,
		Success:   success,
		Timestamp: at,
		Context:   situationalContext(at),
	}
	e.enqueue(func() {
		if err := e.repo.Insert(rec); err != nil {
			e.log.Error("record command", err, map[string]interface{}{"type": commandType})
		}
		if err := e.repo.IncrementFrequency(text); err != nil {
			e.log.Error("increment frequency", err, nil)
		}
	})
}

// RecordUnknown records a command no rule or taught mapping covered.
func (e *Engine) RecordUnknown(text string) {
	e.Record(text, string(domain.IntentUnknown), false)
}

// ProvideFeedback sets the feedback field on the most recent record matching
// the text exactly. Absence of a match is a no-op.
func (e *Engine) ProvideFeedback(text string, positive bool) {
	fb := domain.FeedbackNegative
	if positive {
		fb = domain.FeedbackPositive
	}
	e.enqueue(func() {
		if err := e.repo.SetFeedback(text, fb); err != nil {
			e.log.Error("set feedback", err, nil)
		}
	})
}

// Teach stores a command-to-action mapping keyed by the normalized command
// text, then records the command as a successful custom command.
func (e *Engine) Teach(command, action string) {
	key := strings.ToLower(strings.TrimSpace(command))
	tc := domain.TaughtCommand{Command: key, Action: action, TaughtAt: e.now()}
	e.enqueue(func() {
		if err := e.repo.Teach(tc); err != nil {
			e.log.Error("teach command", err, nil)
		}
	})
	e.Record(key, string(domain.IntentCustom), true)
}

// LookupTaught resolves a taught mapping by its normalized key.
func (e *Engine) LookupTaught(command string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(command))
	action, found, err := e.repo.LookupTaught(key)
	if err != nil {
		e.log.Error("lookup taught command", err, nil)
		return "", false
	}
	return action, found
}

// History returns the most recent records of any type, newest first.
func (e *Engine) History(limit int) []domain.CommandRecord {
	records, err := e.repo.Recent(limit)
	if err != nil {
		e.log.Error("history", err, nil)
		return nil
	}
	return records
}

// RecentSuccessful returns the most recent successful records, newest first.
func (e *Engine) RecentSuccessful(limit int) []domain.CommandRecord {
	records, err := e.repo.RecentSuccessful(limit)
	if err != nil {
		e.log.Error("recent successful", err, nil)
		return nil
	}
	return records
}

// UnknownSample returns the most recent unknown commands, newest first.
func (e *Engine) UnknownSample(limit int) []domain.CommandRecord {
	records, err := e.repo.RecentByType(string(domain.IntentUnknown), limit)
	if err != nil {
		e.log.Error("unknown sample", err, nil)
		return nil
	}
	return records
}

// TotalCount returns the number of processed commands.
func (e *Engine) TotalCount() int {
	n, err := e.repo.CountAll()
	if err != nil {
		e.log.Error("total count", err, nil)
		return 0
	}
	return n
}

// SuccessCount returns the number of successfully executed commands.
func (e *Engine) SuccessCount() int {
	n, err := e.repo.CountSuccessful()
	if err != nil {
		e.log.Error("success count", err, nil)
		return 0
	}
	return n
}

// Accuracy is the ratio of successful to total commands, 0.0 when empty.
func (e *Engine) Accuracy() float64 {
	total := e.TotalCount()
	if total == 0 {
		return 0.0
	}
	return float64(e.SuccessCount()) / float64(total)
}

// TopFrequent returns the highest frequency counters, count descending with
// stable tie order.
func (e *Engine) TopFrequent(limit int) []domain.FrequencyEntry {
	entries, err := e.repo.TopFrequent(limit)
	if err != nil {
		e.log.Error("top frequent", err, nil)
		return nil
	}
	return entries
}

// TaughtCount returns the number of taught mappings.
func (e *Engine) TaughtCount() int {
	n, err := e.repo.TaughtCount()
	if err != nil {
		e.log.Error("taught count", err, nil)
		return 0
	}
	return n
}

// Suggestions proposes recent unknown commands worth teaching, capped at
// limit entries.
func (e *Engine) Suggestions(limit int) []string {
	sample := e.UnknownSample(limit)
	suggestions := make([]string, 0, len(sample))
	for _, rec := range sample {
		suggestions = append(suggestions, fmt.Sprintf("Learn: %q", rec.Text))
	}
	return suggestions
}

// Flush blocks until every write enqueued so far has reached the repository.
// After Close it returns immediately.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	done := make(chan struct{})
	e.queue <- func() { close(done) }
	e.mu.Unlock()
	<-done
}

// Close drains the write queue and stops the worker. Safe to call more than
// once. The underlying repository is left open; its lifecycle belongs to the
// composer.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()
	e.wg.Wait()
}

var _ ports.LearningStore = (*Engine)(nil)

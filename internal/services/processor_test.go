package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/intent"
	"github.com/nekrovoice/nekro-go/internal/pkg/logger"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

type recordedCommand struct {
	text        string
	commandType string
	success     bool
}

// stubLearning is a synchronous in-memory LearningStore for pipeline tests.
type stubLearning struct {
	mu      sync.Mutex
	taught  map[string]string
	records []recordedCommand
}

func newStubLearning() *stubLearning {
	return &stubLearning{taught: map[string]string{}}
}

func (s *stubLearning) Record(text, commandType string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recordedCommand{text, commandType, success})
}

func (s *stubLearning) RecordUnknown(text string) { s.Record(text, "unknown", false) }

func (s *stubLearning) ProvideFeedback(string, bool) {}

func (s *stubLearning) Teach(command, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taught[strings.ToLower(strings.TrimSpace(command))] = action
}

func (s *stubLearning) LookupTaught(command string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.taught[command]
	return action, ok
}

func (s *stubLearning) Normalize(raw string) string { return strings.TrimSpace(strings.ToLower(raw)) }

func (s *stubLearning) RecentSuccessful(int) []domain.CommandRecord { return nil }
func (s *stubLearning) UnknownSample(int) []domain.CommandRecord    { return nil }
func (s *stubLearning) TotalCount() int                             { return len(s.records) }
func (s *stubLearning) SuccessCount() int                           { return 0 }
func (s *stubLearning) Accuracy() float64                           { return 0 }
func (s *stubLearning) TopFrequent(int) []domain.FrequencyEntry     { return nil }

func (s *stubLearning) lastRecord(t *testing.T) recordedCommand {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		t.Fatal("no command recorded")
	}
	return s.records[len(s.records)-1]
}

// stubExecutor captures the resolution it was asked to dispatch.
type stubExecutor struct {
	mu     sync.Mutex
	last   domain.Resolution
	called int
	err    error
}

func (e *stubExecutor) Execute(_ context.Context, res domain.Resolution) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.called++
	e.last = res
	if e.err != nil {
		return "", e.err
	}
	return "done: " + string(res.Intent), nil
}

// stubInterpreter mimics the bridge contract: teach and record on success,
// record unknown on failure, one outcome per request.
type stubInterpreter struct {
	mu       sync.Mutex
	learning ports.LearningStore
	result   domain.Interpretation
	err      error
	calls    int
}

func (i *stubInterpreter) Available() bool { return true }

func (i *stubInterpreter) Interpret(_ context.Context, raw string) <-chan ports.InterpretationOutcome {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	out := make(chan ports.InterpretationOutcome, 1)
	go func() {
		defer close(out)
		if i.err != nil {
			i.learning.RecordUnknown(raw)
			out <- ports.InterpretationOutcome{Err: i.err}
			return
		}
		i.learning.Teach(raw, i.result.ActionType)
		i.learning.Record(raw, i.result.ActionType, true)
		result := i.result
		result.Command = raw
		out <- ports.InterpretationOutcome{Result: result}
	}()
	return out
}

func (i *stubInterpreter) callCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

// collector implements ports.ResultCallback.
type collector struct {
	mu       sync.Mutex
	results  []string
	errors   []string
	unknowns []string
}

func (c *collector) OnResult(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, message)
}

func (c *collector) OnError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, message)
}

func (c *collector) OnUnknown(command string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unknowns = append(c.unknowns, command)
}

func newProcessor(learning *stubLearning, interp ports.Interpreter, exec ports.ActionExecutor) *Processor {
	return &Processor{
		Learning:    learning,
		Classifier:  intent.NewClassifier(learning),
		Interpreter: interp,
		Executor:    exec,
		Logger:      logger.NewStd(false),
	}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not terminate")
	}
}

func TestProcessRuleMatchExecutesAndRecords(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	p := newProcessor(learning, nil, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "call john", cb))

	if exec.called != 1 {
		t.Fatalf("executor called %d times, want 1", exec.called)
	}
	if exec.last.Intent != domain.IntentCall || exec.last.Parameter("contact") != "john" {
		t.Fatalf("executed resolution = %+v", exec.last)
	}
	rec := learning.lastRecord(t)
	if rec.text != "call john" || rec.commandType != "call" || !rec.success {
		t.Fatalf("recorded = %+v", rec)
	}
	if len(cb.results) != 1 {
		t.Fatalf("results = %v", cb.results)
	}
}

func TestProcessEmptyInputIsNoop(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	p := newProcessor(learning, nil, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "   ", cb))

	if exec.called != 0 || len(learning.records) != 0 || len(cb.results)+len(cb.errors)+len(cb.unknowns) != 0 {
		t.Fatal("empty input must not reach any collaborator")
	}
}

func TestProcessTaughtCommandWinsBeforeRules(t *testing.T) {
	learning := newStubLearning()
	learning.Teach("play jazz", "jazz_playlist")
	exec := &stubExecutor{}
	p := newProcessor(learning, nil, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "Play Jazz", cb))

	if exec.last.Intent != domain.IntentCustom || exec.last.Parameter("action") != "jazz_playlist" {
		t.Fatalf("executed resolution = %+v", exec.last)
	}
	rec := learning.lastRecord(t)
	if rec.commandType != "custom" || !rec.success {
		t.Fatalf("recorded = %+v", rec)
	}
}

func TestProcessExecutionFailureRecordedAndReported(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{err: errors.New("no contact named zorp")}
	p := newProcessor(learning, nil, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "call zorp", cb))

	rec := learning.lastRecord(t)
	if rec.success {
		t.Fatal("failed execution recorded as success")
	}
	if len(cb.errors) != 1 || cb.errors[0] != "no contact named zorp" {
		t.Fatalf("errors = %v", cb.errors)
	}
}

func TestProcessUnmatchedWithoutInterpreterReportsUnknown(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	p := newProcessor(learning, nil, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "frobnicate the widget", cb))

	if len(cb.unknowns) != 1 {
		t.Fatalf("unknowns = %v", cb.unknowns)
	}
	rec := learning.lastRecord(t)
	if rec.commandType != "unknown" || rec.success {
		t.Fatalf("recorded = %+v", rec)
	}
}

func TestProcessEscalationSuccessTeachesFastPath(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	interp := &stubInterpreter{
		learning: learning,
		result: domain.Interpretation{
			Intent:      "frobnicate widget",
			ActionType:  "custom",
			Parameters:  map[string]string{},
			Explanation: "Opening widget settings",
			Executable:  true,
		},
	}
	p := newProcessor(learning, interp, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "frobnicate the widget", cb))

	if interp.callCount() != 1 {
		t.Fatalf("interpreter calls = %d, want 1", interp.callCount())
	}
	// caller was told about the escalation, then got the final explanation
	if len(cb.results) != 2 || cb.results[1] != "Opening widget settings" {
		t.Fatalf("results = %v", cb.results)
	}
	if _, found := learning.LookupTaught("frobnicate the widget"); !found {
		t.Fatal("interpretation was not taught")
	}

	// a second identical utterance resolves via the taught fast path
	// without another remote round trip
	wait(t, p.Process(context.Background(), "frobnicate the widget", cb))
	if interp.callCount() != 1 {
		t.Fatalf("interpreter called again: %d", interp.callCount())
	}
	if exec.last.Intent != domain.IntentCustom || exec.last.Parameter("action") != "custom" {
		t.Fatalf("fast path resolution = %+v", exec.last)
	}
}

func TestProcessEscalationFailureReportsAndRecordsUnknown(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	interp := &stubInterpreter{learning: learning, err: errors.New("unparseable reply")}
	p := newProcessor(learning, interp, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "frobnicate the widget", cb))

	if len(cb.errors) != 1 || !strings.Contains(cb.errors[0], "unparseable reply") {
		t.Fatalf("errors = %v", cb.errors)
	}
	rec := learning.lastRecord(t)
	if rec.commandType != "unknown" {
		t.Fatalf("recorded = %+v", rec)
	}
	if len(learning.taught) != 0 {
		t.Fatalf("taught on failure: %v", learning.taught)
	}
	if exec.called != 0 {
		t.Fatal("executor must not run on interpretation failure")
	}
}

func TestProcessNonExecutableInterpretationOnlyExplains(t *testing.T) {
	learning := newStubLearning()
	exec := &stubExecutor{}
	interp := &stubInterpreter{
		learning: learning,
		result: domain.Interpretation{
			Intent:      "philosophy",
			ActionType:  "custom",
			Parameters:  map[string]string{},
			Explanation: "I cannot do that on a phone",
			Executable:  false,
		},
	}
	p := newProcessor(learning, interp, exec)
	cb := &collector{}

	wait(t, p.Process(context.Background(), "compute the meaning of life", cb))

	if exec.called != 0 {
		t.Fatal("non-executable interpretation must not dispatch")
	}
	if len(cb.results) != 2 || cb.results[1] != "I cannot do that on a phone" {
		t.Fatalf("results = %v", cb.results)
	}
	// the mapping is still taught, preserving the learn-regardless behavior
	if _, found := learning.LookupTaught("compute the meaning of life"); !found {
		t.Fatal("non-executable interpretation was not taught")
	}
}

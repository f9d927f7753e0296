// Package services orchestrates the command interpretation pipeline
// end-to-end: normalization, rule matching, execution and escalation to the
// external interpreter.
package services

import (
	"context"
	"strings"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/intent"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// Processor drives one utterance through the pipeline:
// Idle → Normalizing → RuleMatching → Executing, or, when no rule matches,
// Interpreting → Teaching → Executing on success and Reporting on failure.
// There is no retry state; each utterance terminates exactly once.
type Processor struct {
	Learning    ports.LearningStore
	Classifier  *intent.Classifier
	Interpreter ports.Interpreter
	Executor    ports.ActionExecutor
	Logger      ports.Logger
}

// Process handles a single transcribed utterance. The callback receives the
// user-visible outcome; the returned channel closes when the pipeline for
// this utterance reaches a terminal state, so one-shot callers can wait
// without the interpretation leg blocking the input loop.
func (p *Processor) Process(ctx context.Context, text string, cb ports.ResultCallback) <-chan struct{} {
	done := make(chan struct{})

	text = strings.TrimSpace(text)
	if text == "" {
		// transcription absence is a no-op, not an error
		close(done)
		return done
	}
	command := strings.ToLower(text)

	// Taught mappings win outright, before normalization.
	if action, found := p.Learning.LookupTaught(command); found {
		res := domain.Resolution{
			Intent:     domain.IntentCustom,
			Parameters: map[string]string{"action": action},
			Executable: true,
		}
		p.execute(ctx, res, command, cb)
		close(done)
		return done
	}

	normalized := p.Learning.Normalize(command)
	p.Logger.Debug("normalized command", map[string]interface{}{
		"raw":        command,
		"normalized": normalized,
	})

	if res, matched := p.Classifier.Classify(normalized); matched {
		p.execute(ctx, res, command, cb)
		close(done)
		return done
	}

	if p.Interpreter == nil || !p.Interpreter.Available() {
		p.Learning.RecordUnknown(command)
		cb.OnUnknown(text)
		close(done)
		return done
	}

	cb.OnResult("Asking the external interpreter for help...")
	outcomes := p.Interpreter.Interpret(ctx, command)
	go func() {
		defer close(done)
		outcome := <-outcomes
		if outcome.Err != nil {
			// the bridge already recorded the command as unknown
			cb.OnError("interpreter: " + outcome.Err.Error())
			return
		}
		p.dispatchInterpretation(ctx, outcome.Result, cb)
	}()
	return done
}

// execute dispatches a matched resolution and records the outcome. A failed
// execution is still recorded; it is informative, not discarded.
func (p *Processor) execute(ctx context.Context, res domain.Resolution, command string, cb ports.ResultCallback) {
	message, err := p.Executor.Execute(ctx, res)
	p.Learning.Record(command, string(res.Intent), err == nil)
	if err != nil {
		cb.OnError(err.Error())
		return
	}
	cb.OnResult(message)
}

// dispatchInterpretation executes an accepted interpretation. The bridge has
// already taught the mapping and recorded the command successful.
func (p *Processor) dispatchInterpretation(ctx context.Context, result domain.Interpretation, cb ports.ResultCallback) {
	res := result.Resolution()
	if !res.Executable {
		cb.OnResult(result.Explanation)
		return
	}
	message, err := p.Executor.Execute(ctx, res)
	if err != nil {
		cb.OnError(err.Error())
		return
	}
	if result.Explanation != "" {
		message = result.Explanation
	}
	cb.OnResult(message)
}

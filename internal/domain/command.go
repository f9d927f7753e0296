// Package domain defines core business entities and value objects for the
// Nekro voice assistant engine.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures.
package domain

import "time"

// Intent is the closed set of action categories a command can resolve to.
type Intent string

// Intent values. IntentUnknown marks commands no rule or taught mapping covers.
const (
	IntentCall       Intent = "call"
	IntentMessage    Intent = "message"
	IntentSearch     Intent = "search"
	IntentOpenApp    Intent = "open_app"
	IntentAlarm      Intent = "alarm"
	IntentReminder   Intent = "reminder"
	IntentNavigation Intent = "navigation"
	IntentWeather    Intent = "weather"
	IntentTime       Intent = "time"
	IntentDate       Intent = "date"
	IntentSettings   Intent = "settings"
	IntentCustom     Intent = "custom"
	IntentUnknown    Intent = "unknown"
)

// Intents lists every valid intent except unknown, in the order the external
// interpreter is told about them.
func Intents() []Intent {
	return []Intent{
		IntentCall, IntentMessage, IntentSearch, IntentOpenApp, IntentAlarm,
		IntentReminder, IntentNavigation, IntentWeather, IntentTime,
		IntentDate, IntentSettings, IntentCustom,
	}
}

// ParseIntent maps a free-form action type string onto the closed intent set.
// Anything outside the set comes back as IntentCustom so taught actions from
// the interpreter still dispatch.
func ParseIntent(s string) Intent {
	for _, it := range Intents() {
		if string(it) == s {
			return it
		}
	}
	return IntentCustom
}

// Feedback is the tri-state user verdict attached to a CommandRecord.
type Feedback int

// Feedback values.
const (
	FeedbackNone     Feedback = 0
	FeedbackPositive Feedback = 1
	FeedbackNegative Feedback = -1
)

// CommandRecord is one historical utterance event. Records are append-only;
// the only mutation is a feedback update on the most recent matching record.
type CommandRecord struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Type      string    `json:"type"` // intent tag, "unknown" or "custom"
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"` // situational tag, e.g. "morning_monday"
	Feedback  Feedback  `json:"feedback"`
}

// TaughtCommand maps a normalized command string to an action identifier.
// The key is always the lower-cased, trimmed form of the command that
// created it.
type TaughtCommand struct {
	Command  string    `json:"command"`
	Action   string    `json:"action"`
	TaughtAt time.Time `json:"taught_at"`
}

// FrequencyEntry is one row of the per-command occurrence counter.
type FrequencyEntry struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// Resolution is a classified command ready for dispatch to the execution
// collaborator.
type Resolution struct {
	Intent      Intent
	Parameters  map[string]string
	Explanation string
	Executable  bool
}

// Parameter returns the named parameter or "" when absent.
func (r Resolution) Parameter(key string) string {
	if r.Parameters == nil {
		return ""
	}
	return r.Parameters[key]
}

// Interpretation is the structured reply of the external interpretation
// service for one escalated command.
type Interpretation struct {
	RequestID   string
	Command     string // the raw utterance that was escalated
	Intent      string // free-text intent description from the interpreter
	ActionType  string
	Parameters  map[string]string
	Explanation string
	Executable  bool
}

// Resolution converts the interpretation into a dispatchable resolution.
func (i Interpretation) Resolution() Resolution {
	params := i.Parameters
	if params == nil {
		params = map[string]string{}
	}
	return Resolution{
		Intent:      ParseIntent(i.ActionType),
		Parameters:  params,
		Explanation: i.Explanation,
		Executable:  i.Executable,
	}
}

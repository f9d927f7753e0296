// Package intent maps normalized commands onto the closed intent set via
// keyword rules and extracts intent parameters.
package intent

import (
	"strings"

	"github.com/nekrovoice/nekro-go/internal/domain"
)

// TaughtLookup resolves user- or interpreter-taught command mappings. Taught
// mappings always win over the built-in keyword rules.
type TaughtLookup interface {
	LookupTaught(command string) (string, bool)
}

// Classifier is a state-free keyword router over normalized command text.
type Classifier struct {
	taught TaughtLookup
}

// NewClassifier builds a classifier. taught may be nil, disabling the
// taught-command fast path.
func NewClassifier(taught TaughtLookup) *Classifier {
	return &Classifier{taught: taught}
}

type rule struct {
	intent   domain.Intent
	keywords []string
	extract  func(command, keyword string) map[string]string
}

// rules are evaluated in a fixed priority order; the first containment match
// wins.
var rules = []rule{
	{domain.IntentCall, []string{"call", "dial"}, extractContact},
	{domain.IntentMessage, []string{"message", "text", "sms"}, extractMessage},
	{domain.IntentSearch, []string{"search", "google"}, remainderParam("query", "search", "google", "for")},
	{domain.IntentOpenApp, []string{"open", "launch"}, remainderParam("app_name", "open", "launch")},
	{domain.IntentAlarm, []string{"alarm", "wake me"}, nil},
	{domain.IntentTime, []string{"time"}, nil},
	{domain.IntentDate, []string{"date"}, nil},
	{domain.IntentWeather, []string{"weather"}, remainderParam("location", "weather", "in")},
	{domain.IntentNavigation, []string{"navigate", "directions"}, remainderParam("destination", "navigate", "directions", "to")},
	{domain.IntentCustom, []string{"play music", "play song"}, func(string, string) map[string]string {
		return map[string]string{"action": "music"}
	}},
}

// Classify resolves a normalized command. The taught-command lookup runs
// before any keyword rule; no match yields intent unknown and matched=false.
func (c *Classifier) Classify(command string) (domain.Resolution, bool) {
	command = strings.TrimSpace(command)
	if command == "" {
		return domain.Resolution{Intent: domain.IntentUnknown}, false
	}

	if c.taught != nil {
		if action, found := c.taught.LookupTaught(command); found {
			return domain.Resolution{
				Intent:     domain.IntentCustom,
				Parameters: map[string]string{"action": action},
				Executable: true,
			}, true
		}
	}

	for _, r := range rules {
		for _, keyword := range r.keywords {
			if !strings.Contains(command, keyword) {
				continue
			}
			params := map[string]string{}
			if r.extract != nil {
				params = r.extract(command, keyword)
			}
			return domain.Resolution{
				Intent:     r.intent,
				Parameters: params,
				Executable: true,
			}, true
		}
	}

	return domain.Resolution{Intent: domain.IntentUnknown}, false
}

// extractContact takes the token immediately following the trigger keyword as
// the contact name.
func extractContact(command, _ string) map[string]string {
	params := map[string]string{}
	if contact := tokenAfter(command, "call", "dial", "message", "text"); contact != "" {
		params["contact"] = contact
	}
	return params
}

// extractMessage pulls the contact after the trigger plus the free text
// following "saying".
func extractMessage(command, keyword string) map[string]string {
	params := extractContact(command, keyword)
	if idx := strings.Index(command, "saying "); idx != -1 {
		if body := strings.TrimSpace(command[idx+len("saying "):]); body != "" {
			params["message"] = body
		}
	}
	return params
}

// remainderParam strips the listed trigger words and prepositions from the
// command and stores what is left under key.
func remainderParam(key string, strip ...string) func(string, string) map[string]string {
	return func(command, _ string) map[string]string {
		var kept []string
		for _, token := range strings.Fields(command) {
			if containsWord(strip, token) {
				continue
			}
			kept = append(kept, token)
		}
		params := map[string]string{}
		if remainder := strings.Join(kept, " "); remainder != "" {
			params[key] = remainder
		}
		return params
	}
}

func tokenAfter(command string, triggers ...string) string {
	tokens := strings.Fields(command)
	for i := 0; i < len(tokens)-1; i++ {
		if containsWord(triggers, tokens[i]) {
			return tokens[i+1]
		}
	}
	return ""
}

func containsWord(words []string, token string) bool {
	for _, w := range words {
		if token == w {
			return true
		}
	}
	return false
}

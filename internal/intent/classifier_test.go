package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nekrovoice/nekro-go/internal/domain"
)

type taughtMap map[string]string

func (m taughtMap) LookupTaught(command string) (string, bool) {
	action, ok := m[command]
	return action, ok
}

func TestClassifyKeywordRules(t *testing.T) {
	c := NewClassifier(nil)

	cases := []struct {
		command    string
		wantIntent domain.Intent
		wantParams map[string]string
	}{
		{"call john", domain.IntentCall, map[string]string{"contact": "john"}},
		{"dial mom", domain.IntentCall, map[string]string{"contact": "mom"}},
		{"text bob saying running late", domain.IntentMessage, map[string]string{"contact": "bob", "message": "running late"}},
		{"send sms now", domain.IntentMessage, map[string]string{}},
		{"search for cute cats", domain.IntentSearch, map[string]string{"query": "cute cats"}},
		{"google golang generics", domain.IntentSearch, map[string]string{"query": "golang generics"}},
		{"open chrome", domain.IntentOpenApp, map[string]string{"app_name": "chrome"}},
		{"launch camera", domain.IntentOpenApp, map[string]string{"app_name": "camera"}},
		{"set an alarm", domain.IntentAlarm, map[string]string{}},
		{"wake me up early", domain.IntentAlarm, map[string]string{}},
		{"what is the weather in london", domain.IntentWeather, map[string]string{"location": "what is the london"}},
		{"navigate to the office", domain.IntentNavigation, map[string]string{"destination": "the office"}},
		{"play music", domain.IntentCustom, map[string]string{"action": "music"}},
	}

	for _, tc := range cases {
		res, matched := c.Classify(tc.command)
		if !matched {
			t.Errorf("Classify(%q) did not match", tc.command)
			continue
		}
		if res.Intent != tc.wantIntent {
			t.Errorf("Classify(%q) intent = %s, want %s", tc.command, res.Intent, tc.wantIntent)
		}
		if diff := cmp.Diff(tc.wantParams, res.Parameters); diff != "" {
			t.Errorf("Classify(%q) params mismatch (-want +got):\n%s", tc.command, diff)
		}
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := NewClassifier(nil)
	for _, command := range []string{"frobnicate the widget", "", "   "} {
		res, matched := c.Classify(command)
		if matched {
			t.Errorf("Classify(%q) matched unexpectedly", command)
		}
		if res.Intent != domain.IntentUnknown {
			t.Errorf("Classify(%q) intent = %s, want unknown", command, res.Intent)
		}
	}
}

func TestTaughtCommandBeatsKeywordRule(t *testing.T) {
	// "play jazz" would hit no rule, but even a command both could match
	// must resolve through the taught mapping first
	c := NewClassifier(taughtMap{"play music": "spotify_playlist"})

	res, matched := c.Classify("play music")
	if !matched {
		t.Fatal("Classify() did not match")
	}
	if res.Intent != domain.IntentCustom {
		t.Fatalf("intent = %s, want custom", res.Intent)
	}
	if res.Parameter("action") != "spotify_playlist" {
		t.Fatalf("action = %q, want spotify_playlist", res.Parameter("action"))
	}
}

func TestPriorityOrderCallBeforeTime(t *testing.T) {
	// "call" appears before "time" in the rule order, so a command
	// containing both resolves to call
	c := NewClassifier(nil)
	res, matched := c.Classify("call tim every time")
	if !matched || res.Intent != domain.IntentCall {
		t.Fatalf("Classify() = %v intent %s, want call", matched, res.Intent)
	}
	if res.Parameter("contact") != "tim" {
		t.Fatalf("contact = %q, want tim", res.Parameter("contact"))
	}
}

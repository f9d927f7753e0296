// Package executor provides the default execution collaborator. It decides
// nothing; it announces what the resolved command would do on a device and
// reports the human-readable outcome.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// appAliases maps common spoken app names onto package identifiers.
var appAliases = map[string]string{
	"chrome":  "com.android.chrome",
	"gmail":   "com.google.android.gm",
	"maps":    "com.google.android.apps.maps",
	"youtube": "com.google.android.youtube",
	"camera":  "com.android.camera",
	"gallery": "com.google.android.apps.photos",
}

// Announcer implements ports.ActionExecutor by describing the action it
// would dispatch. Real device integrations replace it behind the same port.
type Announcer struct {
	now func() time.Time
}

// NewAnnouncer builds the announcer with the wall clock.
func NewAnnouncer() *Announcer {
	return &Announcer{now: time.Now}
}

// NewAnnouncerWithClock injects a time source for tests.
func NewAnnouncerWithClock(now func() time.Time) *Announcer {
	return &Announcer{now: now}
}

// Execute dispatches one resolved command.
func (a *Announcer) Execute(_ context.Context, res domain.Resolution) (string, error) {
	switch res.Intent {
	case domain.IntentCall:
		contact := res.Parameter("contact")
		if contact == "" {
			return "", fmt.Errorf("no contact recognized in the command")
		}
		return "Calling " + contact, nil

	case domain.IntentMessage:
		contact := res.Parameter("contact")
		if contact == "" {
			return "", fmt.Errorf("no recipient recognized in the command")
		}
		if body := res.Parameter("message"); body != "" {
			return fmt.Sprintf("Sending message to %s: %s", contact, body), nil
		}
		return "Opening message to " + contact, nil

	case domain.IntentSearch:
		query := res.Parameter("query")
		if query == "" {
			return "", fmt.Errorf("nothing to search for")
		}
		return "Searching for: " + query, nil

	case domain.IntentOpenApp:
		app := res.Parameter("app_name")
		if app == "" {
			return "", fmt.Errorf("no app name recognized")
		}
		if pkg, ok := appAliases[app]; ok {
			return fmt.Sprintf("Opening %s (%s)", app, pkg), nil
		}
		return "Opening " + app, nil

	case domain.IntentAlarm:
		return "Opening alarm settings", nil

	case domain.IntentReminder:
		return "Creating a reminder", nil

	case domain.IntentTime:
		t := a.now()
		return fmt.Sprintf("The time is %02d:%02d", t.Hour(), t.Minute()), nil

	case domain.IntentDate:
		return a.now().Format("Today is January 2, 2006"), nil

	case domain.IntentWeather:
		if location := res.Parameter("location"); location != "" {
			return "Checking weather for " + location, nil
		}
		return "Checking the weather", nil

	case domain.IntentNavigation:
		destination := res.Parameter("destination")
		if destination == "" {
			return "", fmt.Errorf("no destination recognized")
		}
		return "Navigating to " + destination, nil

	case domain.IntentSettings:
		return "Opening settings", nil

	case domain.IntentCustom:
		action := res.Parameter("action")
		switch action {
		case "":
			return "", fmt.Errorf("custom command carries no action")
		case "music":
			return "Opening the music player", nil
		default:
			return "Executing custom action " + action, nil
		}

	default:
		return "", fmt.Errorf("cannot execute intent %q", res.Intent)
	}
}

var _ ports.ActionExecutor = (*Announcer)(nil)

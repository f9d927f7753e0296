package learning

import (
	"fmt"
	"strings"
	"time"
)

// situationalContext derives the time-of-day plus weekday tag stored with
// every command record, e.g. "morning_monday".
func situationalContext(t time.Time) string {
	var bucket string
	switch hour := t.Hour(); {
	case hour < 12:
		bucket = "morning"
	case hour < 17:
		bucket = "afternoon"
	case hour < 21:
		bucket = "evening"
	default:
		bucket = "night"
	}
	return fmt.Sprintf("%s_%s", bucket, strings.ToLower(t.Weekday().String()))
}

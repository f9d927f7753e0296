package interpret

import (
	"fmt"
	"strings"

	"github.com/nekrovoice/nekro-go/internal/domain"
)

func defaultSystemPrompt() string {
	intents := make([]string, 0, len(domain.Intents()))
	for _, it := range domain.Intents() {
		intents = append(intents, string(it))
	}
	return fmt.Sprintf(`You are a voice assistant command interpreter. Interpret the user's spoken command and respond ONLY with a single JSON object in this exact format:
{
  "intent": "brief description of what the user wants",
  "action_type": "one of: %s",
  "parameters": {"key": "value"},
  "explanation": "brief explanation",
  "executable": true
}
Parameters are the values needed to carry out the action (contact name, app name, search query, destination, ...). Set executable to false when the command cannot be carried out on a phone.`,
		strings.Join(intents, ", "))
}

func userPrompt(command string) string {
	return fmt.Sprintf("The user said: %q", command)
}

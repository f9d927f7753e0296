// Package interpret escalates unmatched commands to the external
// interpretation service and feeds accepted answers back into the learning
// store.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// trainer is the slice of the learning store the bridge needs to absorb an
// accepted interpretation.
type trainer interface {
	Teach(command, action string)
	Record(text, commandType string, success bool)
	RecordUnknown(text string)
}

// Bridge implements ports.Interpreter against an Anthropic-style messages
// endpoint.
type Bridge struct {
	model      domain.ModelDefinition
	httpClient *http.Client
	learning   trainer
	log        ports.Logger
}

// NewBridge builds the interpretation bridge.
func NewBridge(model domain.ModelDefinition, learning trainer, log ports.Logger) *Bridge {
	hydrateModel(&model)
	return &Bridge{
		model:      model,
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		learning:   learning,
		log:        log,
	}
}

func hydrateModel(model *domain.ModelDefinition) {
	if model.Endpoint == "" {
		model.Endpoint = domain.DefaultInterpreterEndpoint
	}
	if model.ModelID == "" {
		model.ModelID = domain.DefaultInterpreterModel
	}
	if model.MaxTokens == 0 {
		model.MaxTokens = domain.DefaultMaxTokens
	}
	if model.AuthEnvVar == "" {
		model.AuthEnvVar = domain.DefaultAuthEnvVar
	}
}

// Available reports whether a plausible credential is configured. The
// credential itself is never logged.
func (b *Bridge) Available() bool {
	return validCredential(os.Getenv(b.model.AuthEnvVar))
}

func validCredential(key string) bool {
	return strings.HasPrefix(key, domain.CredentialPrefix) && len(key) >= domain.MinCredentialLength
}

// Interpret sends the raw command to the interpretation service off the
// caller's goroutine. The returned channel delivers exactly one outcome. On
// success the mapping is taught and the command recorded successful before
// the outcome is delivered; on failure the command is recorded unknown and
// nothing is taught.
func (b *Bridge) Interpret(ctx context.Context, raw string) <-chan ports.InterpretationOutcome {
	out := make(chan ports.InterpretationOutcome, 1)
	requestID := uuid.NewString()

	go func() {
		defer close(out)

		result, err := b.call(ctx, requestID, raw)
		if err != nil {
			b.log.Warn("interpretation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			b.learning.RecordUnknown(raw)
			out <- ports.InterpretationOutcome{Err: err}
			return
		}

		// The mapping is taught even for results not flagged executable,
		// so the same phrasing resolves locally next time.
		b.learning.Teach(raw, result.ActionType)
		b.learning.Record(raw, result.ActionType, true)
		out <- ports.InterpretationOutcome{Result: result}
	}()

	return out
}

func (b *Bridge) call(ctx context.Context, requestID, raw string) (domain.Interpretation, error) {
	apiKey := os.Getenv(b.model.AuthEnvVar)
	if !validCredential(apiKey) {
		return domain.Interpretation{}, fmt.Errorf("interpreter credential missing or malformed (set %s)", b.model.AuthEnvVar)
	}

	payload := messagesRequest{
		Model:     b.model.ModelID,
		MaxTokens: b.model.MaxTokens,
		System:    b.systemPrompt(),
		Messages: []message{
			{
				Role:    "user",
				Content: []contentBlock{{Type: "text", Text: userPrompt(raw)}},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Interpretation{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Interpretation{}, err
	}
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("content-type", "application/json")

	b.log.Info("calling interpreter", map[string]interface{}{
		"request_id": requestID,
		"model":      b.model.ModelID,
	})
	start := time.Now()
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return domain.Interpretation{}, fmt.Errorf("interpreter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.Interpretation{}, fmt.Errorf("interpreter: %s", resp.Status)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Interpretation{}, fmt.Errorf("interpreter envelope: %w", err)
	}

	result, err := parseInterpretation(decoded.FirstText())
	if err != nil {
		return domain.Interpretation{}, err
	}
	result.RequestID = requestID
	result.Command = raw

	b.log.Debug("interpretation complete", map[string]interface{}{
		"request_id":  requestID,
		"action_type": result.ActionType,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

func (b *Bridge) systemPrompt() string {
	var builder strings.Builder
	for _, msg := range b.model.Prompt {
		if strings.EqualFold(msg.Role, "system") {
			builder.WriteString(msg.Content)
			builder.WriteString("\n")
		}
	}
	if prompt := strings.TrimSpace(builder.String()); prompt != "" {
		return prompt
	}
	return defaultSystemPrompt()
}

// parseInterpretation validates the interpreter's reply: a single JSON object
// with exactly the expected keys and types. Any malformed body is an
// interpretation failure, never retried here.
func parseInterpretation(content string) (domain.Interpretation, error) {
	var reply struct {
		Intent      *string           `json:"intent"`
		ActionType  *string           `json:"action_type"`
		Parameters  map[string]string `json:"parameters"`
		Explanation *string           `json:"explanation"`
		Executable  *bool             `json:"executable"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &reply); err != nil {
		return domain.Interpretation{}, fmt.Errorf("parse interpretation: %w", err)
	}
	if reply.Intent == nil || reply.ActionType == nil || reply.Parameters == nil ||
		reply.Explanation == nil || reply.Executable == nil {
		return domain.Interpretation{}, fmt.Errorf("parse interpretation: incomplete reply")
	}
	return domain.Interpretation{
		Intent:      *reply.Intent,
		ActionType:  *reply.ActionType,
		Parameters:  reply.Parameters,
		Explanation: *reply.Explanation,
		Executable:  *reply.Executable,
	}, nil
}

// extractJSON tolerates replies wrapped in markdown code fences or prose by
// slicing from the first '{' to the last '}'.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (m messagesResponse) FirstText() string {
	if len(m.Content) == 0 {
		return ""
	}
	return m.Content[0].Text
}

var _ ports.Interpreter = (*Bridge)(nil)

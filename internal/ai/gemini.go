// README: Gemini-backed availability parser with bounded retry and a
// deterministic fallback.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"saguaro/internal/modules/availability"
)

const maxAttempts = 3

// GeminiParser implements WindowParser using Google's Gemini models.
type GeminiParser struct {
	client *genai.Client
	model  *genai.GenerativeModel
	loc    *time.Location
	log    zerolog.Logger
	now    func() time.Time
}

// NewGeminiParser initializes a new Gemini client. apiKey should come from
// the environment/config, never hard-coded.
func NewGeminiParser(ctx context.Context, apiKey string, loc *time.Location, log zerolog.Logger) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost; JSON mode for structured
	// parsing.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiParser{client: client, model: model, loc: loc, log: log, now: time.Now}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiParser) Close() {
	p.client.Close()
}

// ParseAvailability extracts structured windows from free text. Empty
// results and server errors are retried with exponential backoff and jitter;
// after the final attempt the fixed fallback windows are returned instead of
// an error, since a request must never die on parser flakiness.
func (p *GeminiParser) ParseAvailability(ctx context.Context, text string) ([]availability.RawWindow, error) {
	prompt := buildParsePrompt(p.now().In(p.loc))

	var windows []availability.RawWindow
	err := retry.Do(
		func() error {
			resp, err := p.model.GenerateContent(ctx, genai.Text(prompt), genai.Text(text))
			if err != nil {
				return fmt.Errorf("gemini generation: %w", err)
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				return fmt.Errorf("no response candidates")
			}

			var b strings.Builder
			for _, part := range resp.Candidates[0].Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					b.WriteString(string(txt))
				}
			}

			var parsed parsedAvailability
			if err := json.Unmarshal([]byte(cleanJSONString(b.String())), &parsed); err != nil {
				return fmt.Errorf("parse model output: %w", err)
			}
			if len(parsed.TimeWindows) == 0 {
				return fmt.Errorf("model returned no time windows")
			}
			windows = parsed.TimeWindows
			return nil
		},
		retry.Attempts(maxAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn().Uint("attempt", n+1).Err(err).Msg("availability parse attempt failed")
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		p.log.Warn().Err(err).Str("text", truncate(text, 100)).Msg("all parse attempts failed, using default availability")
		return FallbackWindows(p.now(), p.loc), nil
	}
	return windows, nil
}

// cleanJSONString strips markdown code fences the model sometimes emits even
// in JSON mode.
func cleanJSONString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func buildParsePrompt(today time.Time) string {
	return fmt.Sprintf(`You are a scheduling assistant for a field-service business in Phoenix, Arizona.
Parse the customer's natural-language availability into a normalized JSON object.

Rules:
1. Today's date is %s. Use it when interpreting relative dates.
2. If availability is vague or missing, assume Monday-Friday 9am-5pm for the next 7 days.
3. If the customer says "flexible" or "anytime" without specifics, return weekday business hours.
4. Use 24-hour ISO 8601 timestamps with the Phoenix offset (-07:00).
5. Always return at least ONE time window, even if you have to infer it.
6. Output exactly: {"time_windows": [{"start": "ISO_DATE", "end": "ISO_DATE"}]}

Vague-input examples:
- "Call me back" means weekday mornings 9am-12pm
- "Flexible" means weekday business hours 9am-5pm
- "Anytime this week" means Mon-Fri 9am-5pm`, today.Format("2006-01-02"))
}

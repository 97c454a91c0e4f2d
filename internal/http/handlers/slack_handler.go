// README: Slack slash-command endpoint (/suggest) with request signing.
package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"saguaro/internal/ai"
	"saguaro/internal/modules/scheduling"
)

// slackTimestampSkew bounds how old a signed request may be before it is
// rejected as a possible replay.
const slackTimestampSkew = 5 * time.Minute

type SlackHandler struct {
	engine        Suggester
	parser        ai.WindowParser
	snapshot      SnapshotFunc
	signingSecret string
	log           zerolog.Logger
	now           func() time.Time
}

func NewSlackHandler(engine Suggester, parser ai.WindowParser, snapshot SnapshotFunc, signingSecret string, log zerolog.Logger) *SlackHandler {
	return &SlackHandler{
		engine:        engine,
		parser:        parser,
		snapshot:      snapshot,
		signingSecret: signingSecret,
		log:           log,
		now:           time.Now,
	}
}

// Command handles the /suggest slash command. Expected text:
// "address | services | availability".
func (h *SlackHandler) Command(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	if !h.verifySignature(c, body) {
		writeError(c, http.StatusUnauthorized, "invalid signature")
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid form body")
		return
	}

	address, services, availabilityText := parseCommandText(form.Get("text"))
	if address == "" {
		c.JSON(http.StatusOK, ephemeral("Usage: /suggest address | services | availability"))
		return
	}

	windows, err := h.parser.ParseAvailability(c.Request.Context(), availabilityText)
	if err != nil {
		c.JSON(http.StatusOK, ephemeral(fmt.Sprintf("Error: %v", err)))
		return
	}

	existing, err := h.snapshot(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("appointment snapshot unavailable, proceeding with empty schedule")
		existing = nil
	}

	suggestions, err := h.engine.Suggest(c.Request.Context(), scheduling.NewRequest{
		Address:  address,
		City:     CityFromAddress(address),
		Services: services,
		Windows:  windows,
	}, existing)
	if err != nil {
		c.JSON(http.StatusOK, ephemeral(fmt.Sprintf("Error: %v", err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response_type": "in_channel",
		"blocks":        formatBlocks(suggestions, address),
	})
}

// verifySignature checks the Slack v0 signing scheme: HMAC-SHA256 of
// "v0:<timestamp>:<body>" with the signing secret.
func (h *SlackHandler) verifySignature(c *gin.Context, body []byte) bool {
	if h.signingSecret == "" {
		return true // signing disabled (local testing)
	}
	ts := c.GetHeader("X-Slack-Request-Timestamp")
	sig := c.GetHeader("X-Slack-Signature")
	if ts == "" || sig == "" {
		return false
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	if d := h.now().Sub(time.Unix(unix, 0)); d > slackTimestampSkew || d < -slackTimestampSkew {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

func parseCommandText(text string) (address string, services int, availabilityText string) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	services = 1
	availabilityText = "Flexible weekdays 9am-5pm"

	if len(parts) > 0 {
		address = parts[0]
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
			services = n
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		availabilityText = parts[2]
	}
	return address, services, availabilityText
}

func ephemeral(text string) gin.H {
	return gin.H{"response_type": "ephemeral", "text": text}
}

// formatBlocks renders suggestions as Slack Block Kit sections, preserving
// the engine's order, scores, and explanations verbatim.
func formatBlocks(suggestions []scheduling.Suggestion, address string) []gin.H {
	if len(suggestions) == 0 {
		return []gin.H{section(fmt.Sprintf("No options for *%s*", address))}
	}
	blocks := []gin.H{section(fmt.Sprintf("*Appointment suggestions for:* `%s`", address))}
	for i, s := range suggestions {
		line := fmt.Sprintf("*Option %d* (Score: %.0f) — *%s* %s at *%s*\n%s\n• Zone: *%s* • travel: ~%d min • distance: %.1f miles • duration: %d min",
			i+1, s.Score, s.DayOfWeek, s.Date, s.Time, s.Explanation,
			s.Zone, s.TravelMinutes, s.DistanceMiles, s.DurationMinutes)
		blocks = append(blocks, gin.H{"type": "divider"}, section(line))
	}
	return blocks
}

func section(text string) gin.H {
	return gin.H{"type": "section", "text": gin.H{"type": "mrkdwn", "text": text}}
}

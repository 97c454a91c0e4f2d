// README: Suggestion endpoint; parses availability, fetches the schedule
// snapshot, and runs the engine.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"saguaro/internal/ai"
	"saguaro/internal/modules/availability"
	"saguaro/internal/modules/scheduling"
)

// SnapshotFunc supplies the existing-appointment snapshot.
type SnapshotFunc func(ctx context.Context) ([]scheduling.ExistingAppointment, error)

type SuggestionHandler struct {
	engine   Suggester
	parser   ai.WindowParser // nil when no Gemini key is configured
	snapshot SnapshotFunc
	log      zerolog.Logger
}

func NewSuggestionHandler(engine Suggester, parser ai.WindowParser, snapshot SnapshotFunc, log zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, parser: parser, snapshot: snapshot, log: log}
}

type suggestRequest struct {
	Address      string                   `json:"address" binding:"required"`
	City         string                   `json:"city"`
	Services     int                      `json:"services"`
	Availability string                   `json:"availability"`
	TimeWindows  []availability.RawWindow `json:"time_windows"`
}

type suggestResponse struct {
	Address     string                  `json:"address"`
	Suggestions []scheduling.Suggestion `json:"suggestions"`
}

// Create handles POST /api/suggestions. Callers supply either pre-parsed
// time_windows or free-text availability for the parser.
func (h *SuggestionHandler) Create(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Services < 1 {
		req.Services = 1
	}
	if req.City == "" {
		req.City = CityFromAddress(req.Address)
	}

	windows := req.TimeWindows
	if len(windows) == 0 {
		if h.parser == nil || req.Availability == "" {
			writeError(c, http.StatusBadRequest, "availability text or time_windows required")
			return
		}
		parsed, err := h.parser.ParseAvailability(c.Request.Context(), req.Availability)
		if err != nil {
			writeError(c, http.StatusBadGateway, "availability parsing unavailable")
			return
		}
		windows = parsed
	}

	existing, err := h.snapshot(c.Request.Context())
	if err != nil {
		// A dead appointment source should not kill the request; score
		// against an empty schedule and say so.
		h.log.Warn().Err(err).Msg("appointment snapshot unavailable, proceeding with empty schedule")
		existing = nil
	}

	suggestions, err := h.engine.Suggest(c.Request.Context(), scheduling.NewRequest{
		Address:  req.Address,
		City:     req.City,
		Services: req.Services,
		Windows:  windows,
	}, existing)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestResponse{Address: req.Address, Suggestions: suggestions})
}

// CityFromAddress pulls the city segment from a comma-separated US address,
// matching the behavior of the chat entry points.
func CityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

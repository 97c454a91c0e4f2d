// README: Handler tests for the suggestion endpoint.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"saguaro/internal/http/handlers"
	"saguaro/internal/logger"
	"saguaro/internal/modules/availability"
	"saguaro/internal/modules/scheduling"
)

// stubEngine records the request it received and returns canned output.
type stubEngine struct {
	gotReq      scheduling.NewRequest
	gotExisting []scheduling.ExistingAppointment
	suggestions []scheduling.Suggestion
	err         error
}

func (s *stubEngine) Suggest(_ context.Context, req scheduling.NewRequest, existing []scheduling.ExistingAppointment) ([]scheduling.Suggestion, error) {
	s.gotReq = req
	s.gotExisting = existing
	return s.suggestions, s.err
}

// stubParser returns fixed windows for any text.
type stubParser struct {
	windows []availability.RawWindow
	err     error
	gotText string
}

func (s *stubParser) ParseAvailability(_ context.Context, text string) ([]availability.RawWindow, error) {
	s.gotText = text
	return s.windows, s.err
}

func emptySnapshot(context.Context) ([]scheduling.ExistingAppointment, error) { return nil, nil }

func buildSuggestionRouter(engine handlers.Suggester, parser *stubParser, snapshot handlers.SnapshotFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var h *handlers.SuggestionHandler
	if parser == nil {
		h = handlers.NewSuggestionHandler(engine, nil, snapshot, logger.Nop())
	} else {
		h = handlers.NewSuggestionHandler(engine, parser, snapshot, logger.Nop())
	}
	r.POST("/api/suggestions", h.Create)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleWindows() []availability.RawWindow {
	return []availability.RawWindow{{Start: "2026-09-02T09:00:00-07:00", End: "2026-09-02T12:00:00-07:00"}}
}

func TestCreateSuggestion_WithRawWindows(t *testing.T) {
	engine := &stubEngine{suggestions: []scheduling.Suggestion{{Date: "2026-09-02", Score: 130}}}
	r := buildSuggestionRouter(engine, nil, emptySnapshot)

	w := postJSON(r, "/api/suggestions", gin.H{
		"address":      "100 W Kesler Ln, Chandler, AZ 85225",
		"services":     3,
		"time_windows": sampleWindows(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Address     string                  `json:"address"`
		Suggestions []scheduling.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Score != 130 {
		t.Errorf("response = %+v", resp)
	}

	if engine.gotReq.Services != 3 || len(engine.gotReq.Windows) != 1 {
		t.Errorf("engine request = %+v", engine.gotReq)
	}
	// City is derived from the comma-separated address when absent.
	if engine.gotReq.City != "Chandler" {
		t.Errorf("city = %q, want Chandler", engine.gotReq.City)
	}
}

func TestCreateSuggestion_ParsesAvailabilityText(t *testing.T) {
	engine := &stubEngine{}
	parser := &stubParser{windows: sampleWindows()}
	r := buildSuggestionRouter(engine, parser, emptySnapshot)

	w := postJSON(r, "/api/suggestions", gin.H{
		"address":      "1 Main St, Mesa, AZ",
		"availability": "weekday mornings",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if parser.gotText != "weekday mornings" {
		t.Errorf("parser got %q", parser.gotText)
	}
	if len(engine.gotReq.Windows) != 1 {
		t.Errorf("parsed windows not forwarded: %+v", engine.gotReq)
	}
	if engine.gotReq.Services != 1 {
		t.Errorf("services defaulted to %d, want 1", engine.gotReq.Services)
	}
}

func TestCreateSuggestion_BadRequests(t *testing.T) {
	engine := &stubEngine{}
	r := buildSuggestionRouter(engine, nil, emptySnapshot)

	// Missing address.
	if w := postJSON(r, "/api/suggestions", gin.H{"services": 1}); w.Code != http.StatusBadRequest {
		t.Errorf("missing address: status = %d", w.Code)
	}
	// No windows and no parser configured.
	if w := postJSON(r, "/api/suggestions", gin.H{"address": "1 Main St", "availability": "anytime"}); w.Code != http.StatusBadRequest {
		t.Errorf("no parser: status = %d", w.Code)
	}
	// Neither windows nor availability text.
	parser := &stubParser{windows: sampleWindows()}
	r2 := buildSuggestionRouter(engine, parser, emptySnapshot)
	if w := postJSON(r2, "/api/suggestions", gin.H{"address": "1 Main St"}); w.Code != http.StatusBadRequest {
		t.Errorf("no availability at all: status = %d", w.Code)
	}
}

func TestCreateSuggestion_ParserFailureIsBadGateway(t *testing.T) {
	engine := &stubEngine{}
	parser := &stubParser{err: errors.New("model offline")}
	r := buildSuggestionRouter(engine, parser, emptySnapshot)

	w := postJSON(r, "/api/suggestions", gin.H{"address": "1 Main St", "availability": "anytime"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestCreateSuggestion_EngineErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ungeocodable", scheduling.ErrUngeocodable, http.StatusUnprocessableEntity},
		{"no availability", scheduling.ErrNoAvailability, http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{err: tt.err}
			r := buildSuggestionRouter(engine, nil, emptySnapshot)
			w := postJSON(r, "/api/suggestions", gin.H{"address": "1 Main St", "time_windows": sampleWindows()})
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("error body = %s", w.Body.String())
			}
		})
	}
}

func TestCreateSuggestion_SnapshotFailureDegrades(t *testing.T) {
	engine := &stubEngine{suggestions: []scheduling.Suggestion{}}
	failing := func(context.Context) ([]scheduling.ExistingAppointment, error) {
		return nil, errors.New("cache on fire")
	}
	r := buildSuggestionRouter(engine, nil, failing)

	w := postJSON(r, "/api/suggestions", gin.H{"address": "1 Main St", "time_windows": sampleWindows()})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite snapshot failure", w.Code)
	}
	if engine.gotExisting != nil {
		t.Errorf("engine received %d appointments, want empty schedule", len(engine.gotExisting))
	}
}

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"100 W Kesler Ln, Chandler, AZ 85225", "Chandler"},
		{"1 Main St,Mesa", "Mesa"},
		{"no commas here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := handlers.CityFromAddress(tt.address); got != tt.want {
			t.Errorf("CityFromAddress(%q) = %q, want %q", tt.address, got, tt.want)
		}
	}
}

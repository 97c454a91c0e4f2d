package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"saguaro/internal/logger"
)

func testClickUp(t *testing.T, handler http.Handler) (*ClickUpClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	loc, err := time.LoadLocation("America/Phoenix")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	c := NewClickUpClient("token-123", "list-9", loc, logger.Nop())
	c.baseURL = srv.URL
	return c, srv
}

func taskJSON(id, name string, fields map[string]any) map[string]any {
	var cf []map[string]any
	for k, v := range fields {
		cf = append(cf, map[string]any{"name": k, "value": v})
	}
	return map[string]any{"id": id, "name": name, "custom_id": "C-" + id, "custom_fields": cf}
}

func writePage(w http.ResponseWriter, tasks []map[string]any, lastPage bool) {
	_ = json.NewEncoder(w).Encode(map[string]any{"tasks": tasks, "last_page": lastPage})
}

func TestClickUpSnapshot_MapsCustomFields(t *testing.T) {
	// 2026-09-02 16:00:00 UTC = 09:00 in Phoenix.
	startMillis := time.Date(2026, 9, 2, 16, 0, 0, 0, time.UTC).UnixMilli()
	endMillis := time.Date(2026, 9, 2, 16, 40, 0, 0, time.UTC).UnixMilli()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token-123" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.Contains(r.URL.Path, "/list/list-9/task") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("statuses[]"); got != "📆 CITA AGENDADA" {
			t.Errorf("statuses[] = %q", got)
		}
		if r.URL.Query().Get("archived") == "true" {
			writePage(w, nil, true)
			return
		}
		writePage(w, []map[string]any{
			taskJSON("t1", "Kesler job", map[string]any{
				"📆 Appointment - Start Time":    fmt.Sprint(startMillis), // ClickUp sends dates as strings
				"📆 Appointment - End Time":      float64(endMillis),
				"📍 Property Details - Street 1": "100 W Kesler Ln",
				"🏙️ City":                        "Chandler",
				"🏙️ State":                       "AZ",
			}),
			taskJSON("t2", "Unscheduled lead", map[string]any{
				"📍 Property Details - Street 1": "200 E Main St",
				"🏙️ City":                        "Mesa",
			}),
		}, true)
	})
	c, _ := testClickUp(t, handler)

	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d appointments, want 2", len(got))
	}

	first := got[0]
	if first.Address != "100 W Kesler Ln Chandler AZ" || first.City != "Chandler" {
		t.Errorf("address mapping: %+v", first)
	}
	if !first.IsExisting || first.ScheduledStart == nil || first.ScheduledEnd == nil {
		t.Fatalf("scheduled task not marked existing: %+v", first)
	}
	if *first.ScheduledStart != "2026-09-02T09:00:00" {
		t.Errorf("start = %s, want 2026-09-02T09:00:00 (business-local)", *first.ScheduledStart)
	}
	if first.CustomerID != "C-t1" || first.CustomerName != "Kesler job" {
		t.Errorf("customer mapping: %+v", first)
	}

	if got[1].IsExisting {
		t.Errorf("task without timestamps marked existing: %+v", got[1])
	}
}

func TestClickUpSnapshot_UsesParentFieldsForSubtasks(t *testing.T) {
	startMillis := time.Date(2026, 9, 3, 17, 0, 0, 0, time.UTC).UnixMilli()
	endMillis := time.Date(2026, 9, 3, 17, 40, 0, 0, time.UTC).UnixMilli()
	parentID := "parent-1"

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/task/"+parentID):
			_ = json.NewEncoder(w).Encode(taskJSON(parentID, "Parent", map[string]any{
				"📆 Appointment - Start Time":    fmt.Sprint(startMillis),
				"📆 Appointment - End Time":      fmt.Sprint(endMillis),
				"📍 Property Details - Street 1": "300 N Gilbert Rd",
				"🏙️ City":                        "Gilbert",
				"🏙️ State":                       "AZ",
			}))
		case r.URL.Query().Get("archived") == "true":
			writePage(w, nil, true)
		default:
			sub := taskJSON("sub-1", "Visit 2 of 3", nil)
			sub["parent"] = parentID
			writePage(w, []map[string]any{sub}, true)
		}
	})
	c, _ := testClickUp(t, handler)

	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments, want 1", len(got))
	}
	if !got[0].IsExisting || got[0].Address != "300 N Gilbert Rd Gilbert AZ" {
		t.Errorf("subtask should inherit parent fields: %+v", got[0])
	}
	// Identity stays with the subtask itself.
	if got[0].CustomerName != "Visit 2 of 3" {
		t.Errorf("customer name = %q", got[0].CustomerName)
	}
}

func TestClickUpListTasks_Pagination(t *testing.T) {
	var activePages atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("archived") == "true" {
			writePage(w, nil, true)
			return
		}
		page := r.URL.Query().Get("page")
		activePages.Add(1)
		switch page {
		case "0":
			writePage(w, []map[string]any{taskJSON("a", "A", nil)}, false)
		case "1":
			writePage(w, []map[string]any{taskJSON("b", "B", nil)}, true)
		default:
			t.Errorf("unexpected page %s", page)
		}
	})
	c, _ := testClickUp(t, handler)

	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d appointments across pages, want 2", len(got))
	}
	if activePages.Load() != 2 {
		t.Errorf("fetched %d active pages, want 2", activePages.Load())
	}
}

func TestClickUpGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("archived") == "true" {
			writePage(w, nil, true)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writePage(w, []map[string]any{taskJSON("a", "A", nil)}, true)
	})
	c, _ := testClickUp(t, handler)

	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot after retry: %v", err)
	}
	if len(got) != 1 || calls.Load() != 2 {
		t.Errorf("got %d appointments after %d active calls", len(got), calls.Load())
	}
}

func TestClickUpGet_UnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, _ := testClickUp(t, handler)

	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatal("expected an error for 401")
	}
	if calls.Load() != 1 {
		t.Errorf("401 retried %d times", calls.Load())
	}
}

func TestClickUpSnapshot_NotFoundStopsPagination(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c, _ := testClickUp(t, handler)

	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d appointments from a 404 list", len(got))
	}
}

func TestClickUpSnapshot_RequiresCredentials(t *testing.T) {
	loc, _ := time.LoadLocation("America/Phoenix")
	c := NewClickUpClient("", "", loc, logger.Nop())
	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatal("expected credential error")
	}
}

func TestMillisField(t *testing.T) {
	fields := map[string]any{
		"str":   "1725264000000",
		"num":   float64(1725264000000),
		"empty": "",
		"junk":  "soon",
		"nil":   nil,
		"bool":  true,
	}
	if ts, ok := millisField(fields, "str"); !ok || ts.UnixMilli() != 1725264000000 {
		t.Errorf("string millis: %v %v", ts, ok)
	}
	if ts, ok := millisField(fields, "num"); !ok || ts.UnixMilli() != 1725264000000 {
		t.Errorf("numeric millis: %v %v", ts, ok)
	}
	for _, name := range []string{"empty", "junk", "nil", "bool", "missing"} {
		if _, ok := millisField(fields, name); ok {
			t.Errorf("field %q should not parse", name)
		}
	}
}

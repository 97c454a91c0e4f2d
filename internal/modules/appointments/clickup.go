// README: ClickUp-backed appointment source (paginated task listing plus
// custom-field extraction).
package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"

	"saguaro/internal/modules/scheduling"
)

const (
	defaultBaseURL  = "https://api.clickup.com/api/v2"
	defaultDaysBack = 15

	// Status marking a task as a scheduled appointment in the workspace.
	scheduledStatus = "📆 CITA AGENDADA"

	// Custom field names as configured in the ClickUp workspace.
	fieldStartTime = "📆 Appointment - Start Time"
	fieldEndTime   = "📆 Appointment - End Time"
	fieldStreet    = "📍 Property Details - Street 1"
	fieldCity      = "🏙️ City"
	fieldState     = "🏙️ State"
)

// ClickUpClient fetches scheduled-appointment tasks from a ClickUp list,
// both archived and active pages, and maps them to engine records.
type ClickUpClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	listID     string
	daysBack   int
	loc        *time.Location
	log        zerolog.Logger
}

func NewClickUpClient(token, listID string, loc *time.Location, log zerolog.Logger) *ClickUpClient {
	return &ClickUpClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		listID:     listID,
		daysBack:   defaultDaysBack,
		loc:        loc,
		log:        log,
	}
}

type clickupTask struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CustomID     string         `json:"custom_id"`
	Parent       *string        `json:"parent"`
	CustomFields []clickupField `json:"custom_fields"`
}

type clickupField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type taskPage struct {
	Tasks    []clickupTask `json:"tasks"`
	LastPage *bool         `json:"last_page"`
}

// Snapshot lists scheduled tasks created within the lookback window and maps
// each to an ExistingAppointment. Tasks without both appointment timestamps
// come back with IsExisting=false; the engine ignores them.
func (c *ClickUpClient) Snapshot(ctx context.Context) ([]scheduling.ExistingAppointment, error) {
	if c.token == "" || c.listID == "" {
		return nil, fmt.Errorf("clickup token and list id are required")
	}
	since := time.Now().AddDate(0, 0, -c.daysBack)

	var tasks []clickupTask
	for _, archived := range []bool{true, false} {
		page, err := c.listTasks(ctx, archived, since)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, page...)
	}
	c.log.Info().Int("tasks", len(tasks)).Msg("fetched appointment tasks from clickup")

	appointments := make([]scheduling.ExistingAppointment, 0, len(tasks))
	for _, task := range tasks {
		fields := task.CustomFields
		// Subtasks carry their data on the parent task.
		if task.Parent != nil && *task.Parent != "" {
			parent, err := c.getTask(ctx, *task.Parent)
			if err != nil {
				c.log.Warn().Err(err).Str("task", task.ID).Msg("parent task lookup failed, skipping")
				continue
			}
			fields = parent.CustomFields
		}
		appointments = append(appointments, c.toAppointment(task, fields))
	}
	return appointments, nil
}

func (c *ClickUpClient) toAppointment(task clickupTask, fields []clickupField) scheduling.ExistingAppointment {
	byName := make(map[string]any, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Value
	}

	street := stringField(byName, fieldStreet)
	city := stringField(byName, fieldCity)
	state := stringField(byName, fieldState)

	appt := scheduling.ExistingAppointment{
		Address:      strings.TrimSpace(street + " " + city + " " + state),
		City:         city,
		CustomerID:   task.CustomID,
		CustomerName: task.Name,
	}

	start, startOK := millisField(byName, fieldStartTime)
	end, endOK := millisField(byName, fieldEndTime)
	if startOK && endOK {
		s := start.In(c.loc).Format("2006-01-02T15:04:05")
		e := end.In(c.loc).Format("2006-01-02T15:04:05")
		appt.IsExisting = true
		appt.ScheduledStart = &s
		appt.ScheduledEnd = &e
	}
	return appt
}

func (c *ClickUpClient) listTasks(ctx context.Context, archived bool, since time.Time) ([]clickupTask, error) {
	var all []clickupTask
	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("archived", strconv.FormatBool(archived))
		q.Set("include_closed", "true")
		q.Add("statuses[]", scheduledStatus)
		q.Set("date_created_gt", strconv.FormatInt(since.UnixMilli(), 10))
		q.Set("page", strconv.Itoa(page))

		var tp taskPage
		status, err := c.get(ctx, fmt.Sprintf("%s/list/%s/task?%s", c.baseURL, c.listID, q.Encode()), &tp)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			break
		}
		all = append(all, tp.Tasks...)
		if tp.LastPage == nil || *tp.LastPage {
			break
		}
	}
	return all, nil
}

func (c *ClickUpClient) getTask(ctx context.Context, id string) (*clickupTask, error) {
	var task clickupTask
	if _, err := c.get(ctx, fmt.Sprintf("%s/task/%s", c.baseURL, id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// get performs a GET with bounded retry on transport and 5xx failures. A 404
// is reported through the status so pagination can stop cleanly.
func (c *ClickUpClient) get(ctx context.Context, rawURL string, out any) (int, error) {
	var statusCode int
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", c.token)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			statusCode = resp.StatusCode
			if resp.StatusCode == http.StatusNotFound {
				return nil
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("clickup server error: %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return retry.Unrecoverable(fmt.Errorf("clickup request failed: %d %s", resp.StatusCode, body))
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	return statusCode, err
}

func stringField(fields map[string]any, name string) string {
	v, ok := fields[name]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

// millisField coerces a ClickUp date custom field (epoch millis, delivered
// as a string or number) into a time.
func millisField(fields map[string]any, name string) (time.Time, bool) {
	v, ok := fields[name]
	if !ok || v == nil {
		return time.Time{}, false
	}
	var ms int64
	switch t := v.(type) {
	case string:
		if t == "" {
			return time.Time{}, false
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		ms = n
	case float64:
		ms = int64(t)
	default:
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

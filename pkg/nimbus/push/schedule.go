package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// acceptedTimeLayouts are tried in order when a scheduled time arrives as a
// string. Whatever the input zone, the wire form is always UTC.
var acceptedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeTime reduces t to the wire's UTC second-precision form,
// YYYY-MM-DDTHH:MM:SSZ. Every consumer of a schedule assumes this form and
// must not re-derive the timezone.
func NormalizeTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ParseScheduledTime parses a timestamp string in any accepted layout.
// Layouts without an explicit offset are taken as UTC.
func ParseScheduledTime(value string) (time.Time, error) {
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &nimbus.ValidationError{
		Field:   "scheduled_time",
		Message: fmt.Sprintf("%q is not a recognized timestamp", value),
	}
}

// Schedule wraps one or more pushes for later delivery. Local selects
// delivery at each recipient's local time instead of an absolute instant.
type Schedule struct {
	Time   time.Time
	Name   string
	Local  bool
	Pushes []*Push
}

// New returns a schedule delivering the given pushes at t.
func New(t time.Time, pushes ...*Push) *Schedule {
	return &Schedule{Time: t, Pushes: pushes}
}

// NewAt is like New but parses the delivery time from a string.
func NewAt(value string, pushes ...*Push) (*Schedule, error) {
	t, err := ParseScheduledTime(value)
	if err != nil {
		return nil, err
	}
	return New(t, pushes...), nil
}

// Payload produces the wire form of the schedule. A single wrapped push is
// emitted as an object, multiple pushes as an array.
func (s *Schedule) Payload() (map[string]any, error) {
	if len(s.Pushes) == 0 {
		return nil, &nimbus.ValidationError{Field: "push", Message: "at least one push is required"}
	}
	if s.Time.IsZero() {
		return nil, &nimbus.ValidationError{Field: "scheduled_time", Message: "a delivery time is required"}
	}

	timeKey := "scheduled_time"
	if s.Local {
		timeKey = "local_scheduled_time"
	}
	sched := map[string]any{timeKey: NormalizeTime(s.Time)}
	if s.Name != "" {
		sched["name"] = s.Name
	}
	out := map[string]any{"schedule": sched}

	if len(s.Pushes) == 1 {
		p, err := s.Pushes[0].Payload()
		if err != nil {
			return nil, err
		}
		out["push"] = p
	} else {
		items := make([]map[string]any, 0, len(s.Pushes))
		for _, push := range s.Pushes {
			p, err := push.Payload()
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		out["push"] = items
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	payload, err := s.Payload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

// Create registers the schedule for delivery.
func (s *Schedule) Create(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	return s.submit(ctx, c, http.MethodPost, "/schedules/")
}

// Update replaces a previously created schedule.
func (s *Schedule) Update(ctx context.Context, c *nimbus.Client, scheduleID string) (*nimbus.Response, error) {
	return s.submit(ctx, c, http.MethodPut, "/schedules/"+scheduleID)
}

func (s *Schedule) submit(ctx context.Context, c *nimbus.Client, method, path string) (*nimbus.Response, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &nimbus.Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
	})
}

// Cancel deletes a schedule before it fires.
func Cancel(ctx context.Context, c *nimbus.Client, scheduleID string) (*nimbus.Response, error) {
	return c.Send(ctx, &nimbus.Request{Method: http.MethodDelete, Path: "/schedules/" + scheduleID})
}

// Lookup fetches a single schedule record.
func Lookup(ctx context.Context, c *nimbus.Client, scheduleID string) (*nimbus.Response, error) {
	return c.Send(ctx, &nimbus.Request{Method: http.MethodGet, Path: "/schedules/" + scheduleID})
}

// ScheduleInfo is one entry of the schedule listing.
type ScheduleInfo struct {
	URL      string         `json:"url"`
	Schedule map[string]any `json:"schedule"`
	Push     map[string]any `json:"push"`
}

// ListSchedules returns an iterator over every pending schedule.
func ListSchedules(c *nimbus.Client) *nimbus.PageIterator[ScheduleInfo] {
	first := &nimbus.Request{Method: http.MethodGet, Path: "/schedules/"}
	return nimbus.NewPageIterator[ScheduleInfo](c, first, "schedules")
}

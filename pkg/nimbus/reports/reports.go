// Package reports wraps the delivery reporting endpoints.
package reports

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// PushInfo summarizes delivery and response counts for one push.
type PushInfo struct {
	PushUUID        string `json:"push_uuid"`
	PushTime        string `json:"push_time"`
	PushType        string `json:"push_type"`
	Sends           int    `json:"sends"`
	DirectResponses int    `json:"direct_responses"`
}

// PerPushDetail fetches delivery metrics for a single push.
func PerPushDetail(ctx context.Context, c *nimbus.Client, pushID string) (*nimbus.Response, error) {
	if _, err := uuid.Parse(pushID); err != nil {
		return nil, &nimbus.ValidationError{
			Field:   "push_id",
			Message: fmt.Sprintf("%q is not a valid push identifier", pushID),
		}
	}
	return c.Send(ctx, &nimbus.Request{Method: http.MethodGet, Path: "/reports/perpush/detail/" + pushID})
}

// ListResponses returns an iterator over pushes sent in the given window,
// with their response counts.
func ListResponses(c *nimbus.Client, start, end time.Time) *nimbus.PageIterator[PushInfo] {
	q := url.Values{
		"start": {start.UTC().Format(time.RFC3339)},
		"end":   {end.UTC().Format(time.RFC3339)},
	}
	first := &nimbus.Request{Method: http.MethodGet, Path: "/reports/responses/list?" + q.Encode()}
	return nimbus.NewPageIterator[PushInfo](c, first, "pushes")
}

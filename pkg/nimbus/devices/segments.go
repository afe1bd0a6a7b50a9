package devices

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// Segment is a saved audience definition. Criteria holds the selector
// expression in wire form, e.g. the output of an audience.Selector.
type Segment struct {
	ID          string         `json:"-"`
	DisplayName string         `json:"display_name"`
	Criteria    map[string]any `json:"criteria"`
}

func (s *Segment) validate() error {
	if s.DisplayName == "" {
		return &nimbus.ValidationError{Field: "display_name", Message: "is required"}
	}
	if len(s.Criteria) == 0 {
		return &nimbus.ValidationError{Field: "criteria", Message: "is required"}
	}
	return nil
}

// Create registers the segment and records the identifier the API assigned
// to it from the response's Location header.
func (s *Segment) Create(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	res, err := c.Send(ctx, &nimbus.Request{
		Method:      http.MethodPost,
		Path:        "/segments/",
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if loc := res.Headers.Get("Location"); loc != "" {
		parts := strings.Split(strings.TrimSuffix(loc, "/"), "/")
		s.ID = parts[len(parts)-1]
	}
	return res, nil
}

// Update replaces the stored definition of the segment.
func (s *Segment) Update(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	if s.ID == "" {
		return nil, &nimbus.ValidationError{Field: "id", Message: "is required for update"}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &nimbus.Request{
		Method:      http.MethodPut,
		Path:        "/segments/" + s.ID,
		Body:        body,
		ContentType: "application/json",
	})
}

// DeleteSegment removes a segment by its identifier.
func DeleteSegment(ctx context.Context, c *nimbus.Client, segmentID string) (*nimbus.Response, error) {
	return c.Send(ctx, &nimbus.Request{Method: http.MethodDelete, Path: "/segments/" + segmentID})
}

// LookupSegment fetches a single segment definition.
func LookupSegment(ctx context.Context, c *nimbus.Client, segmentID string) (*Segment, error) {
	res, err := c.Send(ctx, &nimbus.Request{Method: http.MethodGet, Path: "/segments/" + segmentID})
	if err != nil {
		return nil, err
	}
	var seg Segment
	if err := json.Unmarshal(res.Raw, &seg); err != nil {
		return nil, &nimbus.ResponseParseError{Response: res, Err: err}
	}
	seg.ID = segmentID
	return &seg, nil
}

// SegmentInfo is one entry of the segment listing.
type SegmentInfo struct {
	ID               string `json:"id"`
	DisplayName      string `json:"display_name"`
	CreationDate     int64  `json:"creation_date"`
	ModificationDate int64  `json:"modification_date"`
}

// ListSegments returns an iterator over every saved segment.
func ListSegments(c *nimbus.Client) *nimbus.PageIterator[SegmentInfo] {
	first := &nimbus.Request{Method: http.MethodGet, Path: "/segments/"}
	return nimbus.NewPageIterator[SegmentInfo](c, first, "segments")
}

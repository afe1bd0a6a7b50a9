// Package push builds notification payloads and schedules and wraps the
// push endpoints.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
	"github.com/nimbuscloud/nimbus-go/pkg/nimbus/audience"
)

// DeviceType identifies a target delivery platform.
type DeviceType string

const (
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeAmazon  DeviceType = "amazon"
	DeviceTypeWeb     DeviceType = "web"
	DeviceTypeWNS     DeviceType = "wns"
)

var knownDeviceTypes = map[DeviceType]bool{
	DeviceTypeIOS:     true,
	DeviceTypeAndroid: true,
	DeviceTypeAmazon:  true,
	DeviceTypeWeb:     true,
	DeviceTypeWNS:     true,
}

// openDeviceTypePrefix marks open platform device types, e.g. "open::email".
const openDeviceTypePrefix = "open::"

// Push accumulates one notification payload: who receives it, what it says,
// which platforms it targets and how it is delivered. Fields left unset are
// omitted from the wire form. The builder performs no network I/O; Send and
// Validate serialize it and hand the bytes to the client.
type Push struct {
	Audience       *audience.Selector
	Notification   map[string]any
	DeviceTypes    []DeviceType
	AllDeviceTypes bool
	Options        map[string]any
	Message        map[string]any
}

// Notification returns a notification block carrying a plain alert. Callers
// add per-platform override keys ("ios", "android", ...) directly.
func Notification(alert string) map[string]any {
	return map[string]any{"alert": alert}
}

// RichMessage returns a message-center payload with the given title and body.
func RichMessage(title, body string) map[string]any {
	return map[string]any{"title": title, "body": body}
}

// Payload produces the wire form of the push, emitting only the fields that
// were set.
func (p *Push) Payload() (map[string]any, error) {
	out := map[string]any{}

	if p.Audience != nil {
		v, err := p.Audience.Value()
		if err != nil {
			return nil, err
		}
		out["audience"] = v
	}
	if p.Notification != nil {
		out["notification"] = p.Notification
	}

	switch {
	case p.AllDeviceTypes:
		if len(p.DeviceTypes) > 0 {
			return nil, &nimbus.ValidationError{Field: "device_types", Message: `"all" can't be combined with an explicit platform list`}
		}
		out["device_types"] = "all"
	case p.DeviceTypes != nil:
		if len(p.DeviceTypes) == 0 {
			return nil, &nimbus.ValidationError{Field: "device_types", Message: "must not be empty"}
		}
		for _, dt := range p.DeviceTypes {
			if !knownDeviceTypes[dt] && !strings.HasPrefix(string(dt), openDeviceTypePrefix) {
				return nil, &nimbus.ValidationError{Field: "device_types", Message: fmt.Sprintf("unknown device type %q", dt)}
			}
		}
		out["device_types"] = p.DeviceTypes
	}

	if p.Options != nil {
		out["options"] = p.Options
	}
	if p.Message != nil {
		out["message"] = p.Message
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (p *Push) MarshalJSON() ([]byte, error) {
	payload, err := p.Payload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

// Send delivers the push immediately.
func (p *Push) Send(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	return p.post(ctx, c, "/push/")
}

// Validate submits the push to the validation endpoint, which checks the
// payload without delivering anything.
func (p *Push) Validate(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	return p.post(ctx, c, "/push/validate/")
}

func (p *Push) post(ctx context.Context, c *nimbus.Client, path string) (*nimbus.Response, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &nimbus.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
	})
}

// Package devices wraps the channel, named user and segment endpoints.
package devices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// Channel describes one registered device channel.
type Channel struct {
	ChannelID        string   `json:"channel_id"`
	DeviceType       string   `json:"device_type"`
	Installed        bool     `json:"installed"`
	OptIn            bool     `json:"opt_in"`
	PushAddress      string   `json:"push_address,omitempty"`
	Created          string   `json:"created"`
	LastRegistration string   `json:"last_registration,omitempty"`
	Alias            string   `json:"alias,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

func checkChannelID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &nimbus.ValidationError{
			Field:   "channel_id",
			Message: fmt.Sprintf("%q is not a valid channel identifier", id),
		}
	}
	return nil
}

// LookupChannel fetches a single channel record by its identifier.
func LookupChannel(ctx context.Context, c *nimbus.Client, channelID string) (*Channel, error) {
	if err := checkChannelID(channelID); err != nil {
		return nil, err
	}
	res, err := c.Send(ctx, &nimbus.Request{Method: http.MethodGet, Path: "/channels/" + channelID})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Channel Channel `json:"channel"`
	}
	if err := json.Unmarshal(res.Raw, &envelope); err != nil {
		return nil, &nimbus.ResponseParseError{Response: res, Err: err}
	}
	return &envelope.Channel, nil
}

// ListChannels returns an iterator over every registered channel.
func ListChannels(c *nimbus.Client) *nimbus.PageIterator[Channel] {
	first := &nimbus.Request{Method: http.MethodGet, Path: "/channels/"}
	return nimbus.NewPageIterator[Channel](c, first, "channels")
}

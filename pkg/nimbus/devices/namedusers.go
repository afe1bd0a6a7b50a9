package devices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// NamedUserRecord describes a named user and its associated channels.
type NamedUserRecord struct {
	NamedUserID string              `json:"named_user_id"`
	Tags        map[string][]string `json:"tags,omitempty"`
	Channels    []Channel           `json:"channels,omitempty"`
}

// AssociateNamedUser links a channel to a named user.
func AssociateNamedUser(ctx context.Context, c *nimbus.Client, namedUserID, channelID, deviceType string) (*nimbus.Response, error) {
	return namedUserMutation(ctx, c, "/named_users/associate/", namedUserID, channelID, deviceType)
}

// DisassociateNamedUser removes the link between a channel and a named user.
func DisassociateNamedUser(ctx context.Context, c *nimbus.Client, namedUserID, channelID, deviceType string) (*nimbus.Response, error) {
	return namedUserMutation(ctx, c, "/named_users/disassociate/", namedUserID, channelID, deviceType)
}

func namedUserMutation(ctx context.Context, c *nimbus.Client, path, namedUserID, channelID, deviceType string) (*nimbus.Response, error) {
	if err := checkChannelID(channelID); err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]string{
		"named_user_id": namedUserID,
		"channel_id":    channelID,
		"device_type":   deviceType,
	})
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

// LookupNamedUser fetches a single named user record.
func LookupNamedUser(ctx context.Context, c *nimbus.Client, namedUserID string) (*NamedUserRecord, error) {
	path := "/named_users/?id=" + url.QueryEscape(namedUserID)
	res, err := c.Send(ctx, &nimbus.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		NamedUser NamedUserRecord `json:"named_user"`
	}
	if err := json.Unmarshal(res.Raw, &envelope); err != nil {
		return nil, &nimbus.ResponseParseError{Response: res, Err: err}
	}
	return &envelope.NamedUser, nil
}

// ListNamedUsers returns an iterator over every named user.
func ListNamedUsers(c *nimbus.Client) *nimbus.PageIterator[NamedUserRecord] {
	first := &nimbus.Request{Method: http.MethodGet, Path: "/named_users/"}
	return nimbus.NewPageIterator[NamedUserRecord](c, first, "named_users")
}

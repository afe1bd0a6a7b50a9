package devices

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// TagUpdate mutates the tags on a set of channels. Add and Remove may be
// combined; Set replaces all tags in the named groups and is exclusive with
// both. Maps are keyed by tag group name.
type TagUpdate struct {
	IOSChannels     []string
	AndroidChannels []string
	AmazonChannels  []string

	Add    map[string][]string
	Remove map[string][]string
	Set    map[string][]string
}

func (u *TagUpdate) payload() (map[string]any, error) {
	aud := map[string]any{}
	if len(u.IOSChannels) > 0 {
		aud["ios_channel"] = u.IOSChannels
	}
	if len(u.AndroidChannels) > 0 {
		aud["android_channel"] = u.AndroidChannels
	}
	if len(u.AmazonChannels) > 0 {
		aud["amazon_channel"] = u.AmazonChannels
	}
	if len(aud) == 0 {
		return nil, &nimbus.ValidationError{Field: "audience", Message: "at least one channel is required"}
	}

	if len(u.Set) > 0 && (len(u.Add) > 0 || len(u.Remove) > 0) {
		return nil, &nimbus.ValidationError{Field: "set", Message: "can't be combined with add or remove"}
	}
	if len(u.Set) == 0 && len(u.Add) == 0 && len(u.Remove) == 0 {
		return nil, &nimbus.ValidationError{Field: "tags", Message: "at least one tag operation is required"}
	}

	out := map[string]any{"audience": aud}
	if len(u.Add) > 0 {
		out["add"] = u.Add
	}
	if len(u.Remove) > 0 {
		out["remove"] = u.Remove
	}
	if len(u.Set) > 0 {
		out["set"] = u.Set
	}
	return out, nil
}

// Apply posts the tag mutation.
func (u *TagUpdate) Apply(ctx context.Context, c *nimbus.Client) (*nimbus.Response, error) {
	payload, err := u.payload()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &nimbus.Request{
		Method:      http.MethodPost,
		Path:        "/channels/tags/",
		Body:        body,
		ContentType: "application/json",
	})
}

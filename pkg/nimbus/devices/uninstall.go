package devices

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// ChannelRef identifies one channel in a bulk uninstall call.
type ChannelRef struct {
	ChannelID  string `json:"channel_id"`
	DeviceType string `json:"device_type"`
}

// UninstallChannels removes up to nimbus.MaxBatchSize channels in one call.
// Oversized batches are rejected before any network activity.
func UninstallChannels(ctx context.Context, c *nimbus.Client, channels []ChannelRef) (*nimbus.Response, error) {
	if err := nimbus.CheckBatchSize(len(channels), nimbus.MaxBatchSize); err != nil {
		return nil, err
	}
	body, err := json.Marshal(channels)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, &nimbus.Request{
		Method:      http.MethodPost,
		Path:        "/channels/uninstall/",
		Body:        body,
		ContentType: "application/json",
	})
}

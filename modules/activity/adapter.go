package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort exposes room statistics to other modules.
type ActivityPort interface {
	Stats(ctx context.Context) (Stats, error)
}

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity: ServiceContainer is nil")
	}
	return &ActivityAdapter{container: container}
}

// Stats fetches the current statistics.
func (a *ActivityAdapter) Stats(ctx context.Context) (Stats, error) {
	req := GetStatsRequest{}
	var resp GetStatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return resp.Stats, nil
}

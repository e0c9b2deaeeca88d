package core

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// PublishResult reports delivery stats to the coordinator.
// Dropped holds member names, not endpoints.
type PublishResult struct {
	SendTo  int
	Dropped []string
}

// DirectoryReader is the read-only view served over HTTP.
type DirectoryReader interface {
	Snapshot(ctx context.Context) (domain.Directory, error)
}

package storage

import (
	"context"

	"stakeScope/internal/model"
)

// Journal is a sink for workflow outcome records.
type Journal interface {
	Append(ctx context.Context, rec model.JournalRecord) error
}

package ports

import (
	"context"

	"github.com/bnema/lobbymatch/internal/domain"
)

// SnapshotSource yields a point-in-time view of the matchmaker.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.StatusView, error)
}

// SnapshotArchive stores exported status views for operators.
type SnapshotArchive interface {
	Save(ctx context.Context, view domain.StatusView) error
	Load(ctx context.Context) (domain.StatusView, error)
}

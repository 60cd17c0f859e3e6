package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// ArchiveRepository persists finalized task records.
type ArchiveRepository struct {
	ds *Datastore
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(ds *Datastore) *ArchiveRepository {
	return &ArchiveRepository{ds: ds}
}

// Save inserts one archive row. Conflicts on task_id are ignored since
// a task finalizes exactly once.
func (r *ArchiveRepository) Save(ctx context.Context, archive *TaskArchive) error {
	err := r.ds.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(archive).Error
	if err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}
	return nil
}

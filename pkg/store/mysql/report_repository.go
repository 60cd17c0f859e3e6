package mysql

import (
	"context"
	"fmt"
)

// ReportRepository persists synthesis reports.
type ReportRepository struct {
	ds *Datastore
}

// NewReportRepository creates a new report repository.
func NewReportRepository(ds *Datastore) *ReportRepository {
	return &ReportRepository{ds: ds}
}

// Save inserts one report row.
func (r *ReportRepository) Save(ctx context.Context, report *Report) error {
	if err := r.ds.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

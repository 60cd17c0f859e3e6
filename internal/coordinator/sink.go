package coordinator

import (
	"context"

	"agentcrew/internal/model"
	"agentcrew/pkg/logger"
	"agentcrew/pkg/store/mysql"
)

// Sink receives finalized tasks and synthesis reports for durable
// storage. It is write-only: the coordinator never reads it back, and
// sink failures never affect orchestration outcomes.
type Sink interface {
	SaveReport(ctx context.Context, kind string, taskIDs, contributors []string, content string)
	ArchiveTask(ctx context.Context, task *model.Task)
}

// MySQLSink persists reports and task archives through the MySQL
// repositories.
type MySQLSink struct {
	reports  *mysql.ReportRepository
	archives *mysql.ArchiveRepository
}

// NewMySQLSink creates a sink over the given datastore.
func NewMySQLSink(ds *mysql.Datastore) *MySQLSink {
	return &MySQLSink{
		reports:  mysql.NewReportRepository(ds),
		archives: mysql.NewArchiveRepository(ds),
	}
}

// SaveReport writes one report row, logging failures only.
func (s *MySQLSink) SaveReport(ctx context.Context, kind string, taskIDs, contributors []string, content string) {
	report := &mysql.Report{
		Kind:         kind,
		TaskIDs:      taskIDs,
		Contributors: contributors,
		Content:      content,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		logger.ErrorCtx(ctx, "failed to persist %s report: %v", kind, err)
	}
}

// ArchiveTask writes one finalized task row, logging failures only.
func (s *MySQLSink) ArchiveTask(ctx context.Context, task *model.Task) {
	archive := &mysql.TaskArchive{
		TaskID:      task.ID,
		AgentName:   task.AgentName,
		Description: task.Description,
		Priority:    task.Priority.String(),
		Status:      task.Status.String(),
		SubmittedAt: task.SubmittedAt,
		CompletedAt: task.CompletedAt,
	}
	if task.Result != nil {
		archive.Success = task.Result.Success
		archive.Output = task.Result.Output
		archive.Error = task.Result.Error
	}
	if err := s.archives.Save(ctx, archive); err != nil {
		logger.ErrorCtx(ctx, "failed to archive task %s: %v", task.ID, err)
	}
}

package service

import (
	"context"
	"fmt"

	"curator/models"
)

// withUnitOfWork runs fn inside a fresh unit of work, committing on success.
// Rollback after a successful commit is a no-op.
func withUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) RecordEntry(models.ActivityKind) {}
func (NoopMetrics) RecordRejection(models.ActivityKind, string) {}
func (NoopMetrics) RecordSettlement(models.ActivityKind, int64) {}
func (NoopMetrics) UpdateRunningActivities(models.ActivityKind, int64) {}

package infrastructure

import (
	"context"
	"time"

	"curator/service"
)

// QueryRecorder records database transaction timings
type QueryRecorder interface {
	RecordDatabaseQuery(repository, method string, duration time.Duration)
}

// instrumentedFactory times every unit of work from Begin until it commits
// or rolls back
type instrumentedFactory struct {
	inner    service.UnitOfWorkFactory
	recorder QueryRecorder
}

// NewInstrumentedUnitOfWorkFactory wraps a factory so transaction durations
// are recorded
func NewInstrumentedUnitOfWorkFactory(inner service.UnitOfWorkFactory, recorder QueryRecorder) service.UnitOfWorkFactory {
	return &instrumentedFactory{inner: inner, recorder: recorder}
}

func (f *instrumentedFactory) Create() service.UnitOfWork {
	return &instrumentedUnitOfWork{UnitOfWork: f.inner.Create(), recorder: f.recorder}
}

type instrumentedUnitOfWork struct {
	service.UnitOfWork
	recorder QueryRecorder
	started  time.Time
}

func (u *instrumentedUnitOfWork) Begin(ctx context.Context) error {
	u.started = time.Now()
	return u.UnitOfWork.Begin(ctx)
}

func (u *instrumentedUnitOfWork) Commit() error {
	err := u.UnitOfWork.Commit()
	u.record("commit")
	return err
}

func (u *instrumentedUnitOfWork) Rollback() error {
	err := u.UnitOfWork.Rollback()
	u.record("rollback")
	return err
}

func (u *instrumentedUnitOfWork) record(method string) {
	if u.started.IsZero() {
		return
	}
	u.recorder.RecordDatabaseQuery("unit_of_work", method, time.Since(u.started))
	u.started = time.Time{}
}

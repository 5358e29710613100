package infrastructure

import (
	"context"
	"testing"
	"time"

	"curator/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuery struct {
	repository string
	method     string
}

type queryLog struct {
	queries []recordedQuery
}

func (l *queryLog) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	l.queries = append(l.queries, recordedQuery{repository: repository, method: method})
}

func TestInstrumentedUnitOfWork(t *testing.T) {
	t.Parallel()

	inner := service.NewMockUnitOfWork()
	recorder := &queryLog{}
	factory := NewInstrumentedUnitOfWorkFactory(&service.MockUnitOfWorkFactory{UOW: inner}, recorder)

	uow := factory.Create()
	require.NoError(t, uow.Begin(context.Background()))
	require.NoError(t, uow.Commit())
	// deferred rollback after commit is not a second transaction
	require.NoError(t, uow.Rollback())

	uow = factory.Create()
	require.NoError(t, uow.Begin(context.Background()))
	require.NoError(t, uow.Rollback())

	assert.Equal(t, []recordedQuery{
		{repository: "unit_of_work", method: "commit"},
		{repository: "unit_of_work", method: "rollback"},
	}, recorder.queries)

	// repository getters pass through
	assert.Same(t, inner.UserRepo, uow.UserRepository())
}

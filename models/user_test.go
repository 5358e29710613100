package models

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DebitCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start       int64
		debit       int64
		wantOK      bool
		wantBalance int64
	}{
		{name: "exact balance", start: 100, debit: 100, wantOK: true, wantBalance: 0},
		{name: "partial", start: 100, debit: 40, wantOK: true, wantBalance: 60},
		{name: "insufficient", start: 100, debit: 101, wantOK: false, wantBalance: 100},
		{name: "negative amount", start: 100, debit: -5, wantOK: false, wantBalance: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := NewUser("g1", "u1", "alice", tt.start)
			assert.Equal(t, tt.wantOK, u.Debit(tt.debit))
			assert.Equal(t, tt.wantBalance, u.Tokens())
		})
	}

	t.Run("credit ignores non-positive", func(t *testing.T) {
		u := NewUser("g1", "u1", "alice", 10)
		u.Credit(0)
		u.Credit(-3)
		u.Credit(5)
		assert.Equal(t, int64(15), u.Tokens())
	})
}

func TestUser_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	t.Parallel()

	u := NewUser("g1", "u1", "alice", 100)
	var wg sync.WaitGroup
	var succeeded atomic.Int32

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if u.Debit(30) {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded.Load())
	assert.Equal(t, int64(10), u.Tokens())
}

func TestUser_Losses(t *testing.T) {
	t.Parallel()

	u := NewUser("g1", "u1", "alice", 100)
	u.RecordLoss()
	u.RecordLoss()
	assert.Equal(t, 2, u.Losses())
	u.ResetLosses()
	assert.Equal(t, 0, u.Losses())
}

func TestUser_EqualityByID(t *testing.T) {
	t.Parallel()

	a := NewUser("g1", "u1", "alice", 100)
	b := RestoreUser("g1", "u1", "renamed", 5, 3, a.CreatedAt, a.UpdatedAt)
	c := NewUser("g1", "u2", "alice", 100)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestUser_Presence(t *testing.T) {
	t.Parallel()

	u := NewUser("g1", "u1", "alice", 100)
	assert.Nil(t, u.Presence())

	first := &Presence{DisplayName: "Alice"}
	assert.True(t, u.AttachPresence(first))
	assert.False(t, u.AttachPresence(&Presence{DisplayName: "Other"}))
	assert.Same(t, first, u.Presence())
}

package activity

import (
	"sync"
	"testing"

	"curator/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int64
		stake       int64
		winningPool int64
		want        int64
	}{
		{name: "even split", total: 500, stake: 100, winningPool: 200, want: 250},
		{name: "rounds down below half", total: 10, stake: 1, winningPool: 3, want: 3},
		{name: "rounds half up", total: 5, stake: 1, winningPool: 2, want: 3},
		{name: "sole winner takes pool", total: 700, stake: 50, winningPool: 50, want: 700},
		{name: "empty winning pool returns stake", total: 300, stake: 40, winningPool: 0, want: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Payout(tt.total, tt.stake, tt.winningPool))
		})
	}
}

func TestPrediction_End(t *testing.T) {
	t.Parallel()

	t.Run("parimutuel payout", func(t *testing.T) {
		p := NewPrediction("coin flip", nil, WithClock(fixedClock))
		a := newTestUser("a", 100)
		b := newTestUser("b", 300)
		c := newTestUser("c", 100)

		require.True(t, p.Enter(a, 100, "Heads").OK())
		require.True(t, p.Enter(b, 300, "Tails").OK())
		require.True(t, p.Enter(c, 100, "Heads").OK())

		res := p.End("Heads")
		require.True(t, res.OK(), res.Message())

		s := res.Value()
		assert.Equal(t, int64(500), s.TotalPool)
		assert.Equal(t, int64(200), s.WinningPool)
		assert.Equal(t, map[string]int64{"a": 250, "c": 250}, s.Payouts)
		assert.Equal(t, []string{"a", "c"}, winnerIDs(s.Winners))

		assert.Equal(t, int64(250), a.Tokens())
		assert.Equal(t, int64(0), b.Tokens())
		assert.Equal(t, int64(250), c.Tokens())
		assert.False(t, p.Running())
		assert.Equal(t, fixedNow, p.EndedAt())
		assert.Same(t, s, p.Settlement())
	})

	t.Run("unchosen option fails and stays open", func(t *testing.T) {
		p := NewPrediction("coin flip", nil)
		require.True(t, p.Enter(newTestUser("a", 100), 10, "Heads").OK())

		res := p.End("Edge")
		assert.False(t, res.OK())
		assert.Contains(t, res.Message(), `Invalid winning option "Edge"`)
		assert.True(t, p.Running())
	})

	t.Run("ending twice fails", func(t *testing.T) {
		p := NewPrediction("coin flip", nil)
		require.True(t, p.Enter(newTestUser("a", 100), 10, "Heads").OK())
		require.True(t, p.End("Heads").OK())

		res := p.End("Heads")
		assert.False(t, res.OK())
		assert.Equal(t, "Prediction is not running", res.Message())
	})
}

func TestPrediction_Enter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		declared    []string
		balance     int64
		stake       int64
		option      string
		wantOK      bool
		wantMessage string
		wantBalance int64
	}{
		{name: "exact balance", balance: 100, stake: 100, option: "Heads", wantOK: true, wantMessage: "Bet 100 tokens on Heads", wantBalance: 0},
		{name: "one over balance", balance: 100, stake: 101, option: "Heads", wantMessage: "Insufficient tokens: 101 > 100", wantBalance: 100},
		{name: "zero stake", balance: 100, stake: 0, option: "Heads", wantMessage: "Bet must be greater than zero", wantBalance: 100},
		{name: "negative stake", balance: 100, stake: -5, option: "Heads", wantMessage: "Bet must be greater than zero", wantBalance: 100},
		{name: "undeclared option", declared: []string{"Yes", "No"}, balance: 100, stake: 10, option: "Maybe", wantMessage: `Unknown option "Maybe"`, wantBalance: 100},
		{name: "declared option", declared: []string{"Yes", "No"}, balance: 100, stake: 10, option: "No", wantOK: true, wantMessage: "Bet 10 tokens on No", wantBalance: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPrediction("match", tt.declared)
			u := newTestUser("a", tt.balance)

			res := p.Enter(u, tt.stake, tt.option)
			assert.Equal(t, tt.wantOK, res.OK())
			assert.Equal(t, tt.wantMessage, res.Message())
			assert.Equal(t, tt.wantBalance, u.Tokens())
			assert.Same(t, u, res.Value())
		})
	}
}

func TestPrediction_ChoiceIsLockedIn(t *testing.T) {
	t.Parallel()

	p := NewPrediction("coin flip", nil)
	u := newTestUser("a", 100)

	require.True(t, p.Enter(u, 30, "Heads").OK())
	require.True(t, p.Enter(u, 20, "Heads").OK())

	res := p.Enter(u, 10, "Tails")
	assert.False(t, res.OK())
	assert.Equal(t, "Cannot change choice after entering", res.Message())

	pos, ok := p.PositionOf("a")
	require.True(t, ok)
	assert.Equal(t, "Heads", pos.Option)
	assert.Equal(t, int64(50), pos.Stake)
	assert.Equal(t, int64(50), u.Tokens())
	assert.Equal(t, map[string]int64{"Heads": 50}, p.PoolByOption())
}

func TestPrediction_ResetRefundsEveryone(t *testing.T) {
	t.Parallel()

	p := NewPrediction("coin flip", nil)
	a := newTestUser("a", 100)
	b := newTestUser("b", 250)

	require.True(t, p.Enter(a, 60, "Heads").OK())
	require.True(t, p.Enter(a, 40, "Heads").OK())
	require.True(t, p.Enter(b, 200, "Tails").OK())

	res := p.Reset()
	require.True(t, res.OK())
	assert.Equal(t, int64(100), a.Tokens())
	assert.Equal(t, int64(250), b.Tokens())
	assert.Equal(t, 0, p.Participants())
	assert.Empty(t, p.Options())
	assert.True(t, p.Running())

	// choice is free again after reset
	assert.True(t, p.Enter(a, 10, "Tails").OK())
}

func TestPrediction_Cancel(t *testing.T) {
	t.Parallel()

	p := NewPrediction("coin flip", nil)
	a := newTestUser("a", 100)
	require.True(t, p.Enter(a, 70, "Heads").OK())

	assert.True(t, p.Cancel())
	assert.Equal(t, int64(100), a.Tokens())
	assert.False(t, p.Running())
	assert.False(t, p.Cancel())
	assert.False(t, p.Reset().OK())
}

func TestPrediction_EnterAfterClose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		close func(p *Prediction)
	}{
		{name: "after end", close: func(p *Prediction) { require.True(t, p.End("Heads").OK()) }},
		{name: "after cancel", close: func(p *Prediction) { require.True(t, p.Cancel()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPrediction("coin flip", nil)
			a := newTestUser("a", 100)
			late := newTestUser("late", 100)
			require.True(t, p.Enter(a, 40, "Heads").OK())
			tt.close(p)
			before := p.Positions()
			balance := a.Tokens()

			res := p.Enter(late, 10, "Heads")
			assert.False(t, res.OK())
			assert.Equal(t, "Prediction is not running", res.Message())

			again := p.Enter(a, 10, "Heads")
			assert.False(t, again.OK())
			assert.Equal(t, "Prediction is not running", again.Message())

			assert.Equal(t, before, p.Positions())
			assert.Equal(t, int64(100), late.Tokens())
			assert.Equal(t, balance, a.Tokens())
		})
	}
}

func TestPrediction_RefundsReportedUnderLock(t *testing.T) {
	t.Parallel()

	p := NewPrediction("coin flip", nil)
	a := newTestUser("a", 100)
	b := newTestUser("b", 100)
	require.True(t, p.Enter(b, 20, "Tails").OK())
	require.True(t, p.Enter(a, 30, "Heads").OK())

	res, refunded := p.ResetWithRefunds()
	require.True(t, res.OK())
	require.Len(t, refunded, 2)
	assert.Equal(t, "a", refunded[0].User.ID)
	assert.Equal(t, int64(30), refunded[0].Stake)
	assert.Equal(t, "b", refunded[1].User.ID)

	require.True(t, p.Enter(a, 15, "Tails").OK())
	cancelled, ok := p.CancelWithRefunds()
	require.True(t, ok)
	require.Len(t, cancelled, 1)
	assert.Equal(t, int64(15), cancelled[0].Stake)
	assert.Equal(t, int64(100), a.Tokens())

	_, ok = p.CancelWithRefunds()
	assert.False(t, ok)
	failed, none := p.ResetWithRefunds()
	assert.False(t, failed.OK())
	assert.Nil(t, none)
}

func TestPrediction_ConcurrentEntriesAcrossPredictions(t *testing.T) {
	t.Parallel()

	first := NewPrediction("first", nil)
	second := NewPrediction("second", nil)
	u := newTestUser("a", 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			first.Enter(u, 10, "Heads")
		}()
		go func() {
			defer wg.Done()
			second.Enter(u, 10, "Tails")
		}()
	}
	wg.Wait()

	staked := first.TotalPool() + second.TotalPool()
	assert.Equal(t, int64(100), staked)
	assert.Equal(t, int64(0), u.Tokens())
}

func TestActivity_TaggedVariant(t *testing.T) {
	t.Parallel()

	r := OfRaffle(NewRaffle("raffle", 1))
	p := OfPrediction(NewPrediction("prediction", []string{"Yes", "No"}))

	assert.Equal(t, models.ActivityKindRaffle, r.Kind())
	raffle, ok := r.Raffle()
	assert.True(t, ok)
	assert.NotNil(t, raffle)
	_, ok = r.Prediction()
	assert.False(t, ok)

	assert.Equal(t, models.ActivityKindPrediction, p.Kind())
	assert.Equal(t, "prediction", p.Title())
	assert.NotEqual(t, r.ID(), p.ID())
	assert.True(t, p.Running())
	assert.True(t, p.Cancel())
	assert.False(t, p.Running())

	var zero Activity
	assert.True(t, zero.IsZero())
	assert.Panics(t, func() { zero.ID() })
}

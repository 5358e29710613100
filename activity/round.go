package activity

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"curator/rwlock"

	"github.com/google/uuid"
)

// Clock supplies the wall-clock time recorded when a round ends.
type Clock func() time.Time

// RandomSource yields uniform samples in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

type options struct {
	clock  Clock
	random RandomSource
}

// Option customizes a new raffle or prediction.
type Option func(*options)

// WithClock overrides the clock used for start and end timestamps.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithRandom overrides the source used by the raffle draw.
func WithRandom(random RandomSource) Option {
	return func(o *options) {
		if random != nil {
			o.random = random
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now, random: globalRandom{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// round holds the state shared by both activity variants. The running flag is
// read without the lock at the top of every operation and re-checked under
// the write hold before any mutation.
type round struct {
	id        uuid.UUID
	title     string
	lock      *rwlock.Lock
	running   atomic.Bool
	clock     Clock
	startedAt time.Time
	endedAt   time.Time // guarded by lock
}

func (r *round) init(title string, clock Clock) {
	r.id = uuid.New()
	r.title = title
	r.lock = rwlock.New()
	r.clock = clock
	r.startedAt = clock()
	r.running.Store(true)
}

// ID returns the process-unique identifier of the round.
func (r *round) ID() uuid.UUID { return r.id }

// Title returns the operator-supplied title.
func (r *round) Title() string { return r.title }

// Running reports whether the round is open.
func (r *round) Running() bool { return r.running.Load() }

// StartedAt returns when the round was created.
func (r *round) StartedAt() time.Time { return r.startedAt }

// EndedAt returns when the round was settled or cancelled, or the zero time.
func (r *round) EndedAt() time.Time {
	return rwlock.ReadValue(r.lock, func() time.Time { return r.endedAt })
}

// close marks the round finished. Caller holds the write lock.
func (r *round) close() {
	r.running.Store(false)
	r.endedAt = r.clock()
}

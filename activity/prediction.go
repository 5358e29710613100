package activity

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"curator/models"
	"curator/outcome"
	"curator/rwlock"
)

// Position is one participant's cumulative stake on their locked-in option.
type Position struct {
	User   *models.User
	Stake  int64
	Option string
}

// Settlement describes how a prediction paid out.
type Settlement struct {
	Option      string
	TotalPool   int64
	WinningPool int64
	Winners     []*models.User
	Payouts     map[string]int64
}

// Prediction is a parimutuel market: the whole pool is split among those who
// picked the winning option in proportion to their stake.
type Prediction struct {
	round
	declared []string

	positions  map[string]*Position
	settlement *Settlement
}

// NewPrediction opens a prediction. When declared is non-empty, entries must
// pick one of those options; otherwise any option is accepted.
func NewPrediction(title string, declared []string, opts ...Option) *Prediction {
	o := buildOptions(opts)
	p := &Prediction{
		positions: make(map[string]*Position),
	}
	for _, opt := range declared {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			invariant("NewPrediction", "declared options must be non-empty")
		}
		if !slices.Contains(p.declared, opt) {
			p.declared = append(p.declared, opt)
		}
	}
	p.init(title, o.clock)
	return p
}

// Options returns the declared options, or the options chosen so far when
// none were declared.
func (p *Prediction) Options() []string {
	if len(p.declared) > 0 {
		return slices.Clone(p.declared)
	}
	return rwlock.ReadValue(p.lock, func() []string {
		seen := make([]string, 0)
		for _, pos := range p.positions {
			if !slices.Contains(seen, pos.Option) {
				seen = append(seen, pos.Option)
			}
		}
		sort.Strings(seen)
		return seen
	})
}

// Enter stakes tokens on an option. A participant may deposit repeatedly,
// but only on the option chosen first.
func (p *Prediction) Enter(user *models.User, stake int64, option string) outcome.Result[*models.User] {
	if user == nil || user.ID == "" {
		invariant("Prediction.Enter", "participant must have an id")
	}
	if !p.running.Load() {
		return outcome.FailWith(user, "Prediction is not running")
	}
	if stake <= 0 {
		return outcome.FailWith(user, "Bet must be greater than zero")
	}
	if balance := user.Tokens(); stake > balance {
		return outcome.FailWith(user, fmt.Sprintf("Insufficient tokens: %d > %d", stake, balance))
	}
	if len(p.declared) > 0 && !slices.Contains(p.declared, option) {
		return outcome.FailWith(user, fmt.Sprintf("Unknown option %q", option))
	}

	mismatch := rwlock.ReadValue(p.lock, func() bool {
		pos, ok := p.positions[user.ID]
		return ok && pos.Option != option
	})
	if mismatch {
		return outcome.FailWith(user, "Cannot change choice after entering")
	}

	return rwlock.WriteValue(p.lock, func() outcome.Result[*models.User] {
		if !p.running.Load() {
			return outcome.FailWith(user, "Prediction is not running")
		}
		pos, ok := p.positions[user.ID]
		if ok && pos.Option != option {
			return outcome.FailWith(user, "Cannot change choice after entering")
		}
		if !user.Debit(stake) {
			return outcome.FailWith(user, fmt.Sprintf("Insufficient tokens: %d > %d", stake, user.Tokens()))
		}

		if !ok {
			pos = &Position{User: user, Option: option}
			p.positions[user.ID] = pos
		}
		pos.Stake += stake
		return outcome.Pass(user, fmt.Sprintf("Bet %d tokens on %s", stake, option))
	})
}

// End settles the prediction on winningOption and credits each winner
// round(totalPool * stake / winningPool).
func (p *Prediction) End(winningOption string) outcome.Result[*Settlement] {
	return rwlock.WriteValue(p.lock, func() outcome.Result[*Settlement] {
		if !p.running.Load() {
			return outcome.Fail[*Settlement]("Prediction is not running")
		}

		var total, winningPool int64
		var winners []*Position
		for _, pos := range p.positions {
			total += pos.Stake
			if pos.Option == winningOption {
				winningPool += pos.Stake
				winners = append(winners, pos)
			}
		}
		if len(winners) == 0 {
			return outcome.Fail[*Settlement](fmt.Sprintf("Invalid winning option %q for prediction %q", winningOption, p.title))
		}
		sort.Slice(winners, func(i, j int) bool { return winners[i].User.ID < winners[j].User.ID })

		s := &Settlement{
			Option:      winningOption,
			TotalPool:   total,
			WinningPool: winningPool,
			Winners:     make([]*models.User, 0, len(winners)),
			Payouts:     make(map[string]int64, len(winners)),
		}
		for _, pos := range winners {
			payout := Payout(total, pos.Stake, winningPool)
			pos.User.Credit(payout)
			s.Winners = append(s.Winners, pos.User)
			s.Payouts[pos.User.ID] = payout
		}

		p.settlement = s
		p.close()
		return outcome.Pass(s, fmt.Sprintf("Prediction ended with %d winners and %d total bets", len(s.Winners), total))
	})
}

// Payout computes one winner's share of the pool, rounding half up. An empty
// winning pool returns the stake unchanged.
func Payout(totalPool, stake, winningPool int64) int64 {
	if winningPool == 0 {
		return stake
	}
	return int64(math.Round(float64(totalPool) * float64(stake) / float64(winningPool)))
}

// Reset refunds every stake and reopens the round.
func (p *Prediction) Reset() outcome.Result[*Prediction] {
	res, _ := p.ResetWithRefunds()
	return res
}

// ResetWithRefunds is Reset that also returns the positions it refunded,
// captured under the same hold as the refund.
func (p *Prediction) ResetWithRefunds() (outcome.Result[*Prediction], []Position) {
	if !p.running.Load() {
		return outcome.FailWith(p, "Prediction is not running"), nil
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.running.Load() {
		return outcome.FailWith(p, "Prediction is not running"), nil
	}
	refunded := p.refundLocked()
	return outcome.Pass(p, "Prediction reset successfully"), refunded
}

// Cancel refunds every stake and leaves the round closed. Reports whether it
// was running.
func (p *Prediction) Cancel() bool {
	_, ok := p.CancelWithRefunds()
	return ok
}

// CancelWithRefunds is Cancel that also returns the positions it refunded.
func (p *Prediction) CancelWithRefunds() ([]Position, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.running.Load() {
		return nil, false
	}
	refunded := p.refundLocked()
	p.close()
	return refunded, true
}

func (p *Prediction) refundLocked() []Position {
	refunded := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		pos.User.Credit(pos.Stake)
		refunded = append(refunded, *pos)
	}
	sort.Slice(refunded, func(i, j int) bool { return refunded[i].User.ID < refunded[j].User.ID })
	clear(p.positions)
	p.settlement = nil
	return refunded
}

// Positions returns a snapshot of every position in participant-id order.
func (p *Prediction) Positions() []Position {
	return rwlock.ReadValue(p.lock, func() []Position {
		out := make([]Position, 0, len(p.positions))
		for _, pos := range p.positions {
			out = append(out, *pos)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
		return out
	})
}

// PositionOf returns a participant's position, if any.
func (p *Prediction) PositionOf(participantID string) (Position, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	pos, ok := p.positions[participantID]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// TotalPool sums every stake.
func (p *Prediction) TotalPool() int64 {
	return rwlock.ReadValue(p.lock, func() int64 {
		var total int64
		for _, pos := range p.positions {
			total += pos.Stake
		}
		return total
	})
}

// PoolByOption sums stakes per option.
func (p *Prediction) PoolByOption() map[string]int64 {
	return rwlock.ReadValue(p.lock, func() map[string]int64 {
		pools := make(map[string]int64)
		for _, pos := range p.positions {
			pools[pos.Option] += pos.Stake
		}
		return pools
	})
}

// Participants returns the number of participants with a position.
func (p *Prediction) Participants() int {
	return rwlock.ReadValue(p.lock, func() int { return len(p.positions) })
}

// Settlement returns the result of End, or nil while unsettled.
func (p *Prediction) Settlement() *Settlement {
	return rwlock.ReadValue(p.lock, func() *Settlement { return p.settlement })
}

package activity

import (
	"fmt"
	"sort"
	"sync/atomic"

	"curator/models"
	"curator/outcome"
	"curator/rwlock"
)

const (
	// BaseTickets is every entrant's starting allotment.
	BaseTickets = 100
	// LossMultiplier is the extra tickets per consecutive raffle loss.
	LossMultiplier = 5

	// maxDrawAttempts bounds resampling when a sample lands on a previous winner.
	maxDrawAttempts = 64
)

// TierBonus returns the extra tickets granted for a bonus tier.
func TierBonus(tier models.BonusTier) int {
	switch tier {
	case models.TierBooster:
		return 25
	case models.TierOne, models.TierOneGifted:
		return 50
	case models.TierTwo, models.TierTwoGifted:
		return 100
	case models.TierThree, models.TierThreeGifted:
		return 150
	default:
		return 0
	}
}

// Tickets computes the weight of an entry.
func Tickets(tier models.BonusTier, losses int) int {
	return BaseTickets + TierBonus(tier) + losses*LossMultiplier
}

// RaffleEntry is one participant's weight in a raffle.
type RaffleEntry struct {
	User    *models.User
	Tickets int
}

// Raffle is a stake-weighted draw for one or more distinct winners. Tickets
// are weights only and never touch the entrant's token balance.
type Raffle struct {
	round
	winnerSlots int
	random      RandomSource

	canEnter atomic.Bool
	entries  map[string]*RaffleEntry
	winners  []*models.User
}

// NewRaffle opens a raffle that will draw winnerSlots distinct winners.
func NewRaffle(title string, winnerSlots int, opts ...Option) *Raffle {
	if winnerSlots < 1 {
		invariant("NewRaffle", "winner slots must be positive, got %d", winnerSlots)
	}
	o := buildOptions(opts)
	r := &Raffle{
		winnerSlots: winnerSlots,
		random:      o.random,
		entries:     make(map[string]*RaffleEntry),
	}
	r.init(title, o.clock)
	r.canEnter.Store(true)
	return r
}

// WinnerSlots returns the configured number of winners.
func (r *Raffle) WinnerSlots() int { return r.winnerSlots }

// AcceptingEntries reports whether Enter can currently succeed.
func (r *Raffle) AcceptingEntries() bool {
	return r.running.Load() && r.canEnter.Load()
}

// CloseEntries stops accepting entries without ending the round.
func (r *Raffle) CloseEntries() bool {
	return r.canEnter.CompareAndSwap(true, false)
}

// OpenEntries resumes accepting entries.
func (r *Raffle) OpenEntries() bool {
	return r.canEnter.CompareAndSwap(false, true)
}

// Enter records a participant's entry. Each participant may enter once per round.
func (r *Raffle) Enter(user *models.User, tier models.BonusTier) outcome.Result[*models.User] {
	if user == nil || user.ID == "" {
		invariant("Raffle.Enter", "participant must have an id")
	}
	if !r.running.Load() {
		return outcome.FailWith(user, "Raffle is not running")
	}
	if !r.canEnter.Load() {
		return outcome.FailWith(user, "Raffle is not accepting entries")
	}

	entered := rwlock.ReadValue(r.lock, func() bool {
		_, ok := r.entries[user.ID]
		return ok
	})
	if entered {
		return outcome.FailWith(user, "You have already entered this raffle")
	}

	return rwlock.WriteValue(r.lock, func() outcome.Result[*models.User] {
		if !r.running.Load() {
			return outcome.FailWith(user, "Raffle is not running")
		}
		if !r.canEnter.Load() {
			return outcome.FailWith(user, "Raffle is not accepting entries")
		}
		if _, ok := r.entries[user.ID]; ok {
			return outcome.FailWith(user, "You have already entered this raffle")
		}

		tickets := Tickets(tier, user.Losses())
		r.entries[user.ID] = &RaffleEntry{User: user, Tickets: tickets}
		return outcome.Pass(user, fmt.Sprintf("Entered with %d tickets into raffle", tickets))
	})
}

// End closes the raffle and draws min(winnerSlots, entrants) distinct winners.
// Winners have their loss counter reset; every other entrant records a loss.
func (r *Raffle) End() outcome.Result[[]*models.User] {
	return rwlock.WriteValue(r.lock, func() outcome.Result[[]*models.User] {
		if !r.running.Load() {
			return outcome.Fail[[]*models.User]("Raffle is not running")
		}
		if len(r.entries) == 0 {
			return outcome.Fail[[]*models.User]("Raffle has no entrants")
		}

		r.canEnter.Store(false)
		r.close()

		ordered := r.orderedLocked()
		winners := r.draw(ordered)
		r.winners = winners

		won := make(map[string]bool, len(winners))
		for _, w := range winners {
			won[w.ID] = true
		}
		for _, e := range ordered {
			if won[e.User.ID] {
				e.User.ResetLosses()
			} else {
				e.User.RecordLoss()
			}
		}

		return outcome.Pass(winners, fmt.Sprintf("Raffle ended with %d winner(s) from %d entrant(s)", len(winners), len(ordered)))
	})
}

// draw walks entrants in participant-id order accumulating ticket weight
// until the cumulative share meets the sample, skipping previous winners.
func (r *Raffle) draw(ordered []*RaffleEntry) []*models.User {
	total := 0
	for _, e := range ordered {
		total += e.Tickets
	}

	slots := min(r.winnerSlots, len(ordered))
	chosen := make(map[string]bool, slots)
	winners := make([]*models.User, 0, slots)

	for len(winners) < slots {
		var pick *RaffleEntry
		for attempt := 0; attempt < maxDrawAttempts && pick == nil; attempt++ {
			pick = pickEntry(ordered, chosen, total, r.random.Float64())
		}
		if pick == nil {
			// sample kept landing on chosen entrants; take the last eligible one
			for i := len(ordered) - 1; i >= 0; i-- {
				if !chosen[ordered[i].User.ID] {
					pick = ordered[i]
					break
				}
			}
		}
		chosen[pick.User.ID] = true
		winners = append(winners, pick.User)
	}
	return winners
}

func pickEntry(ordered []*RaffleEntry, chosen map[string]bool, total int, sample float64) *RaffleEntry {
	target := sample * float64(total)
	cumulative := 0
	for _, e := range ordered {
		cumulative += e.Tickets
		if chosen[e.User.ID] {
			continue
		}
		if target <= float64(cumulative) {
			return e
		}
	}
	return nil
}

// Reset clears all entries and reopens the round. Tickets were never debited,
// so nothing is refunded.
func (r *Raffle) Reset() outcome.Result[*Raffle] {
	if !r.running.Load() {
		return outcome.FailWith(r, "Raffle is not running")
	}
	return rwlock.WriteValue(r.lock, func() outcome.Result[*Raffle] {
		if !r.running.Load() {
			return outcome.FailWith(r, "Raffle is not running")
		}
		r.resetLocked()
		return outcome.Pass(r, "Raffle reset successfully")
	})
}

// Cancel clears the round and leaves it closed. Reports whether it was running.
func (r *Raffle) Cancel() bool {
	return rwlock.WriteValue(r.lock, func() bool {
		if !r.running.Load() {
			return false
		}
		r.resetLocked()
		r.canEnter.Store(false)
		r.close()
		return true
	})
}

func (r *Raffle) resetLocked() {
	clear(r.entries)
	r.winners = nil
	r.canEnter.Store(true)
}

// Entries returns a snapshot of entries in participant-id order.
func (r *Raffle) Entries() []RaffleEntry {
	return rwlock.ReadValue(r.lock, func() []RaffleEntry {
		ordered := r.orderedLocked()
		out := make([]RaffleEntry, len(ordered))
		for i, e := range ordered {
			out[i] = *e
		}
		return out
	})
}

// TicketsFor returns the tickets a participant entered with.
func (r *Raffle) TicketsFor(participantID string) (int, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	e, ok := r.entries[participantID]
	if !ok {
		return 0, false
	}
	return e.Tickets, true
}

// TotalTickets sums every entry's tickets.
func (r *Raffle) TotalTickets() int {
	return rwlock.ReadValue(r.lock, func() int {
		total := 0
		for _, e := range r.entries {
			total += e.Tickets
		}
		return total
	})
}

// Participants returns the number of entrants.
func (r *Raffle) Participants() int {
	return rwlock.ReadValue(r.lock, func() int { return len(r.entries) })
}

// Winners returns the winners of the last draw, in draw order.
func (r *Raffle) Winners() []*models.User {
	return rwlock.ReadValue(r.lock, func() []*models.User {
		return append([]*models.User(nil), r.winners...)
	})
}

func (r *Raffle) orderedLocked() []*RaffleEntry {
	ordered := make([]*RaffleEntry, 0, len(r.entries))
	for _, e := range r.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].User.ID < ordered[j].User.ID
	})
	return ordered
}

package models

import (
	"sync"
	"sync/atomic"
	"time"
)

// Presence is the live Discord member handle attached to a user record by the
// bot layer. Domain code carries it along but never reads it.
type Presence struct {
	DisplayName  string
	RoleIDs      []string
	PremiumSince *time.Time
}

// User is a participant's per-guild record: identity, token balance and the
// consecutive raffle-loss counter. Two records are the same user when their
// IDs match; everything else is mutable state.
type User struct {
	ID        string
	GuildID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu       sync.Mutex
	tokens   int64
	losses   int
	presence atomic.Pointer[Presence]
}

// NewUser creates a record seeded with the given starting balance.
func NewUser(guildID, id, name string, startingTokens int64) *User {
	now := time.Now()
	return &User{
		ID:        id,
		GuildID:   guildID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		tokens:    startingTokens,
	}
}

// RestoreUser rebuilds a record from persisted state.
func RestoreUser(guildID, id, name string, tokens int64, losses int, createdAt, updatedAt time.Time) *User {
	return &User{
		ID:        id,
		GuildID:   guildID,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		tokens:    tokens,
		losses:    losses,
	}
}

// Equal reports whether both records identify the same participant.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ID == other.ID
}

// Tokens returns the current balance.
func (u *User) Tokens() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens
}

// Losses returns the consecutive raffle-loss counter.
func (u *User) Losses() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.losses
}

// Snapshot returns balance and losses read under a single hold.
func (u *User) Snapshot() (tokens int64, losses int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens, u.losses
}

// Debit subtracts amount if the balance covers it. The check and the
// subtraction happen under one hold, so concurrent debits cannot overdraw.
func (u *User) Debit(amount int64) bool {
	if amount < 0 {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.tokens < amount {
		return false
	}
	u.tokens -= amount
	u.UpdatedAt = time.Now()
	return true
}

// Credit adds amount to the balance. Negative amounts are ignored.
func (u *User) Credit(amount int64) {
	if amount <= 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens += amount
	u.UpdatedAt = time.Now()
}

// SetTokens overwrites the balance. Used by admin tooling only.
func (u *User) SetTokens(amount int64) {
	if amount < 0 {
		amount = 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens = amount
	u.UpdatedAt = time.Now()
}

// RecordLoss increments the consecutive-loss counter.
func (u *User) RecordLoss() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.losses++
	u.UpdatedAt = time.Now()
}

// ResetLosses clears the consecutive-loss counter after a win.
func (u *User) ResetLosses() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.losses = 0
	u.UpdatedAt = time.Now()
}

// Presence returns the attached member handle, or nil.
func (u *User) Presence() *Presence {
	return u.presence.Load()
}

// AttachPresence sets the member handle if none is attached yet and reports
// whether it did.
func (u *User) AttachPresence(p *Presence) bool {
	if p == nil {
		return false
	}
	return u.presence.CompareAndSwap(nil, p)
}

// ReplacePresence overwrites the member handle unconditionally.
func (u *User) ReplacePresence(p *Presence) {
	u.presence.Store(p)
}

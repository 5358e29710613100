// Package registry holds the live in-memory state of every guild the bot has
// joined: user records, running activities and message correlations.
package registry

import (
	"sort"

	"curator/models"
	"curator/outcome"
	"curator/rwlock"
)

// Registry maps guild ids to their entries. It is built once at startup and
// passed to whatever needs it.
type Registry struct {
	lock   *rwlock.Lock
	guilds map[string]*Guild
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		lock:   rwlock.New(),
		guilds: make(map[string]*Guild),
	}
}

// RegisterGuild adds a guild entry. It fails if the guild is already present.
func (r *Registry) RegisterGuild(guildID string, settings *models.GuildSettings) outcome.Result[*Guild] {
	requireID("RegisterGuild", "guild", guildID)
	if settings == nil {
		settings = models.NewGuildSettings(guildID, "", 0)
	}

	var g *Guild
	inserted := r.lock.Escalate(func() bool {
		_, exists := r.guilds[guildID]
		return !exists
	}, func() {
		g = newGuild(guildID, settings)
		r.guilds[guildID] = g
	})
	if !inserted {
		return outcome.Failf[*Guild]("Guild %s is already registered", guildID)
	}
	return outcome.Pass(g, "Guild registered")
}

// Guild looks up a registered guild.
func (r *Registry) Guild(guildID string) outcome.Result[*Guild] {
	requireID("Guild", "guild", guildID)
	r.lock.RLock()
	defer r.lock.RUnlock()

	g, ok := r.guilds[guildID]
	if !ok {
		return outcome.Failf[*Guild]("Guild %s is not registered", guildID)
	}
	return outcome.Pass(g, "Guild found")
}

// RemoveGuild drops a guild entry, e.g. when the bot leaves the guild.
func (r *Registry) RemoveGuild(guildID string) outcome.Result[*Guild] {
	requireID("RemoveGuild", "guild", guildID)
	r.lock.Lock()
	defer r.lock.Unlock()

	g, ok := r.guilds[guildID]
	if !ok {
		return outcome.Failf[*Guild]("Guild %s is not registered", guildID)
	}
	delete(r.guilds, guildID)
	return outcome.Pass(g, "Guild removed")
}

// Guilds returns a snapshot of every entry ordered by guild id.
func (r *Registry) Guilds() []*Guild {
	guilds := rwlock.ReadValue(r.lock, func() []*Guild {
		out := make([]*Guild, 0, len(r.guilds))
		for _, g := range r.guilds {
			out = append(out, g)
		}
		return out
	})
	sort.Slice(guilds, func(i, j int) bool { return guilds[i].id < guilds[j].id })
	return guilds
}

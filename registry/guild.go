package registry

import (
	"sort"

	"curator/activity"
	"curator/models"
	"curator/outcome"
	"curator/rwlock"

	"github.com/google/uuid"
)

// Guild is one guild's live state. Each guild owns its lock, so operations on
// different guilds never contend.
type Guild struct {
	id   string
	lock *rwlock.Lock

	settings   *models.GuildSettings
	users      map[string]*models.User
	activities map[uuid.UUID]activity.Activity
	messages   map[string]activity.Activity

	// tombstones of retired activities; their ids and messages stay claimed
	retired         map[uuid.UUID]struct{}
	retiredMessages map[string]uuid.UUID
}

func newGuild(guildID string, settings *models.GuildSettings) *Guild {
	s := settings.Clone()
	s.GuildID = guildID
	return &Guild{
		id:         guildID,
		lock:       rwlock.New(),
		settings:   s,
		users:      make(map[string]*models.User),
		activities: make(map[uuid.UUID]activity.Activity),
		messages:   make(map[string]activity.Activity),

		retired:         make(map[uuid.UUID]struct{}),
		retiredMessages: make(map[string]uuid.UUID),
	}
}

// ID returns the guild id.
func (g *Guild) ID() string { return g.id }

// Settings returns a copy of the guild's settings.
func (g *Guild) Settings() *models.GuildSettings {
	return rwlock.ReadValue(g.lock, func() *models.GuildSettings { return g.settings.Clone() })
}

// UpdateSettings applies fn to a copy of the settings and stores the result.
func (g *Guild) UpdateSettings(fn func(*models.GuildSettings)) *models.GuildSettings {
	return rwlock.WriteValue(g.lock, func() *models.GuildSettings {
		next := g.settings.Clone()
		fn(next)
		next.GuildID = g.id
		g.settings = next
		return next.Clone()
	})
}

// GetOrCreateUser returns the participant's record, creating it with the
// guild's starting balance on first sight. A presence handle is attached if
// the record has none. created reports whether a new record was made.
func (g *Guild) GetOrCreateUser(participantID, name string, presence *models.Presence) (user *models.User, created bool) {
	requireID("GetOrCreateUser", "participant", participantID)

	g.lock.RLock()
	u, ok := g.users[participantID]
	g.lock.RUnlock()
	if ok {
		u.AttachPresence(presence)
		return u, false
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	if u, ok := g.users[participantID]; ok {
		u.AttachPresence(presence)
		return u, false
	}
	u = models.NewUser(g.id, participantID, name, g.settings.StartingBalance)
	u.AttachPresence(presence)
	g.users[participantID] = u
	return u, true
}

// AdoptUser inserts a record loaded from storage unless one is already live,
// and returns whichever record is canonical.
func (g *Guild) AdoptUser(u *models.User) *models.User {
	if u == nil {
		panic(&InvariantError{Op: "AdoptUser", Msg: "nil user"})
	}
	requireID("AdoptUser", "participant", u.ID)

	var canonical *models.User
	g.lock.Escalate(func() bool {
		existing, ok := g.users[u.ID]
		canonical = existing
		return !ok
	}, func() {
		g.users[u.ID] = u
		canonical = u
	})
	return canonical
}

// User looks up a participant's record.
func (g *Guild) User(participantID string) outcome.Result[*models.User] {
	requireID("User", "participant", participantID)
	g.lock.RLock()
	defer g.lock.RUnlock()

	u, ok := g.users[participantID]
	if !ok {
		return outcome.Failf[*models.User]("User %s not found", participantID)
	}
	return outcome.Pass(u, "User found")
}

// RemoveUser drops a participant's record.
func (g *Guild) RemoveUser(participantID string) outcome.Result[*models.User] {
	requireID("RemoveUser", "participant", participantID)
	g.lock.Lock()
	defer g.lock.Unlock()

	u, ok := g.users[participantID]
	if !ok {
		return outcome.Failf[*models.User]("User %s not found", participantID)
	}
	delete(g.users, participantID)
	return outcome.Pass(u, "User removed")
}

// Users returns a snapshot of every record ordered by participant id.
func (g *Guild) Users() []*models.User {
	users := rwlock.ReadValue(g.lock, func() []*models.User {
		out := make([]*models.User, 0, len(g.users))
		for _, u := range g.users {
			out = append(out, u)
		}
		return out
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// AddActivity registers an activity. It fails if the id is already present
// or belonged to a retired activity.
func (g *Guild) AddActivity(a activity.Activity) outcome.Result[activity.Activity] {
	if a.IsZero() {
		panic(&InvariantError{Op: "AddActivity", Msg: "empty activity handle"})
	}
	id := a.ID()

	var reason string
	inserted := g.lock.Escalate(func() bool {
		reason = g.claimedLocked(id)
		return reason == ""
	}, func() {
		g.activities[id] = a
	})
	if !inserted {
		return outcome.FailWith(a, "Activity "+id.String()+" "+reason)
	}
	return outcome.Pass(a, "Activity registered")
}

func (g *Guild) claimedLocked(id uuid.UUID) string {
	if _, ok := g.activities[id]; ok {
		return "is already registered"
	}
	if _, ok := g.retired[id]; ok {
		return "was retired"
	}
	return ""
}

// Activity looks up an activity by id.
func (g *Guild) Activity(id uuid.UUID) outcome.Result[activity.Activity] {
	g.lock.RLock()
	defer g.lock.RUnlock()

	a, ok := g.activities[id]
	if !ok {
		return outcome.Fail[activity.Activity]("Activity " + id.String() + " not found")
	}
	return outcome.Pass(a, "Activity found")
}

// RetireActivity drops a finished activity from the live set. Its id and
// message ids stay claimed, so neither can be registered or mapped again.
func (g *Guild) RetireActivity(id uuid.UUID) outcome.Result[activity.Activity] {
	g.lock.Lock()
	defer g.lock.Unlock()

	a, ok := g.activities[id]
	if !ok {
		return outcome.Fail[activity.Activity]("Activity " + id.String() + " not found")
	}
	delete(g.activities, id)
	g.retired[id] = struct{}{}
	for msgID, mapped := range g.messages {
		if mapped.ID() == id {
			delete(g.messages, msgID)
			g.retiredMessages[msgID] = id
		}
	}
	return outcome.Pass(a, "Activity retired")
}

// Retired reports whether an activity id belongs to a retired activity.
func (g *Guild) Retired(id uuid.UUID) bool {
	g.lock.RLock()
	defer g.lock.RUnlock()
	_, ok := g.retired[id]
	return ok
}

// Activities returns a snapshot of every activity ordered by start time.
func (g *Guild) Activities() []activity.Activity {
	list := rwlock.ReadValue(g.lock, func() []activity.Activity {
		out := make([]activity.Activity, 0, len(g.activities))
		for _, a := range g.activities {
			out = append(out, a)
		}
		return out
	})
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt().Before(list[j].StartedAt()) })
	return list
}

// MapActivityToMessage correlates a posted message with its activity so a
// button click can be routed back. The first mapping for a message wins and
// outlives the activity's retirement.
func (g *Guild) MapActivityToMessage(messageID string, a activity.Activity) outcome.Result[activity.Activity] {
	requireID("MapActivityToMessage", "message", messageID)
	if a.IsZero() {
		panic(&InvariantError{Op: "MapActivityToMessage", Msg: "empty activity handle"})
	}
	id := a.ID()

	var reason string
	inserted := g.lock.Escalate(func() bool {
		_, live := g.messages[messageID]
		_, dead := g.retiredMessages[messageID]
		_, retired := g.retired[id]
		switch {
		case live || dead:
			reason = "Message " + messageID + " is already mapped to an activity"
		case retired:
			reason = "Activity " + id.String() + " was retired"
		default:
			reason = ""
		}
		return reason == ""
	}, func() {
		g.messages[messageID] = a
	})
	if !inserted {
		return outcome.FailWith(a, reason)
	}
	return outcome.Pass(a, "Message mapped")
}

// ActivityByMessage resolves the activity a message belongs to.
func (g *Guild) ActivityByMessage(messageID string) (activity.Activity, bool) {
	g.lock.RLock()
	defer g.lock.RUnlock()
	a, ok := g.messages[messageID]
	return a, ok
}

// MessagesFor returns the message ids correlated with an activity, retired
// or not.
func (g *Guild) MessagesFor(id uuid.UUID) []string {
	ids := rwlock.ReadValue(g.lock, func() []string {
		var out []string
		for msgID, a := range g.messages {
			if a.ID() == id {
				out = append(out, msgID)
			}
		}
		for msgID, owner := range g.retiredMessages {
			if owner == id {
				out = append(out, msgID)
			}
		}
		return out
	})
	sort.Strings(ids)
	return ids
}

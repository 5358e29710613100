package common

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// PostTracker remembers which channel each activity message was posted in so
// slash commands can edit the message after the activity settles
type PostTracker struct {
	mu       sync.Mutex
	channels map[string]string
}

// NewPostTracker creates an empty tracker
func NewPostTracker() *PostTracker {
	return &PostTracker{channels: make(map[string]string)}
}

// Track records the channel of a posted message
func (t *PostTracker) Track(msg *discordgo.Message) {
	if msg == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[msg.ID] = msg.ChannelID
}

// Channel returns the channel a message was posted in
func (t *PostTracker) Channel(messageID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.channels[messageID]
	return ch, ok
}

// Forget drops messages that no longer belong to a live activity
func (t *PostTracker) Forget(messageIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range messageIDs {
		delete(t.channels, id)
	}
}

// EditAll rewrites every tracked message in messageIDs
func (t *PostTracker) EditAll(s *discordgo.Session, messageIDs []string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	for _, id := range messageIDs {
		if ch, ok := t.Channel(id); ok {
			EditActivityMessage(s, ch, id, embed, components)
		}
	}
}

// PostActivity posts an activity message. When the guild has an activity
// channel other than the invoking one, the message goes there and the invoker
// gets an ephemeral pointer to it; otherwise it is the interaction response.
func PostActivity(s *discordgo.Session, i *discordgo.InteractionCreate, activityChannelID *string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
	if activityChannelID != nil && *activityChannelID != "" && *activityChannelID != i.ChannelID {
		msg, err := s.ChannelMessageSendComplex(*activityChannelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		})
		if err != nil {
			return nil, err
		}
		RespondWithSuccess(s, i, "Posted in <#"+*activityChannelID+">", true)
		return msg, nil
	}

	if err := RespondWithEmbed(s, i, embed, components, false); err != nil {
		return nil, err
	}
	return s.InteractionResponse(i.Interaction)
}

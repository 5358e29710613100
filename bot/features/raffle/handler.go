package raffle

import (
	"context"
	"errors"

	"curator/activity"
	"curator/bot/common"
	"curator/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) participant(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*common.Participant, bool) {
	p, err := f.resolver.Resolve(ctx, s, i)
	if errors.Is(err, common.ErrNotInGuild) {
		common.RespondWithError(s, i, "Raffles can only be used in a server")
		return nil, false
	}
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve raffle participant")
		return nil, false
	}
	return p, true
}

func (f *Feature) admin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*common.Participant, bool) {
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return nil, false
	}
	if !p.IsAdmin() {
		common.RespondWithError(s, i, "You need administrator permissions or an admin role to manage raffles")
		return nil, false
	}
	return p, true
}

// current returns the most recent running raffle, responding when there is none
func (f *Feature) current(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant) (*activity.Raffle, bool) {
	a, ok := f.activities.Current(p.Guild, models.ActivityKindRaffle)
	if !ok {
		common.RespondWithError(s, i, "No raffle is running")
		return nil, false
	}
	r, _ := a.Raffle()
	return r, true
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	title := "Raffle"
	slots := f.defaultWinnerSlots
	for _, opt := range options {
		switch opt.Name {
		case "title":
			title = opt.StringValue()
		case "winners":
			slots = int(opt.IntValue())
		}
	}

	a, err := f.activities.StartRaffle(ctx, p.Guild, title, slots, p.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Could not start the raffle: winners must be at least 1")
		return
	}
	r, _ := a.Raffle()

	msg, err := common.PostActivity(s, i, p.Settings().ActivityChannelID, BuildRaffleEmbed(r), BuildRaffleComponents(r))
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":    p.Guild.ID(),
			"activity_id": a.ID(),
			"error":       err,
		}).Error("Failed to post raffle message")
		return
	}

	f.posts.Track(msg)
	if res := f.activities.AttachMessage(p.Guild, msg.ID, a); !res.OK() {
		log.WithFields(log.Fields{
			"guild_id":   p.Guild.ID(),
			"message_id": msg.ID,
			"reason":     res.Message(),
		}).Warn("Failed to attach raffle message")
	}
}

// handleEntries pauses or resumes entries so admins can freeze the pool
// before the draw
func (f *Feature) handleEntries(s *discordgo.Session, i *discordgo.InteractionCreate, open bool) {
	p, ok := f.admin(context.Background(), s, i)
	if !ok {
		return
	}
	r, ok := f.current(s, i, p)
	if !ok {
		return
	}

	res := f.activities.SetRaffleEntries(p.Guild, r, open)
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, p.Guild.MessagesFor(r.ID()), BuildRaffleEmbed(r), BuildRaffleComponents(r))
	common.RespondWithSuccess(s, i, res.Message(), true)
}

func (f *Feature) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	r, ok := f.current(s, i, p)
	if !ok {
		return
	}

	messages := p.Guild.MessagesFor(r.ID())
	res := f.activities.EndRaffle(ctx, p.Guild, r)
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, messages, BuildRaffleEmbed(r), BuildRaffleComponents(r))
	f.posts.Forget(messages...)
	common.RespondWithMessage(s, i, BuildResultContent(r, userIDs(res.Value())), false)
}

func (f *Feature) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	r, ok := f.current(s, i, p)
	if !ok {
		return
	}

	res := f.activities.Reset(ctx, p.Guild, activity.OfRaffle(r))
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, p.Guild.MessagesFor(r.ID()), BuildRaffleEmbed(r), BuildRaffleComponents(r))
	common.RespondWithSuccess(s, i, res.Message(), true)
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	r, ok := f.current(s, i, p)
	if !ok {
		return
	}

	messages := p.Guild.MessagesFor(r.ID())
	res := f.activities.Cancel(ctx, p.Guild, activity.OfRaffle(r))
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, messages, BuildRaffleEmbed(r), BuildRaffleComponents(r))
	f.posts.Forget(messages...)
	common.RespondWithSuccess(s, i, res.Message(), true)
}

// HandleComponent handles a button on a raffle message
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant, r *activity.Raffle) {
	switch i.MessageComponentData().CustomID {
	case EnterButtonID:
		f.handleEnterButton(s, i, p, r)
	case EndButtonID:
		f.handleEndButton(s, i, p, r)
	}
}

func (f *Feature) handleEnterButton(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant, r *activity.Raffle) {
	ctx := context.Background()
	res := f.activities.EnterRaffle(ctx, p.Guild, r, p.User, p.Tier())
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	common.RespondWithSuccess(s, i, res.Message(), true)
	common.EditActivityMessage(s, i.ChannelID, i.Message.ID, BuildRaffleEmbed(r), BuildRaffleComponents(r))
}

func (f *Feature) handleEndButton(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant, r *activity.Raffle) {
	if !p.IsAdmin() {
		common.RespondWithError(s, i, "Only admins can end the raffle")
		return
	}

	ctx := context.Background()
	messages := p.Guild.MessagesFor(r.ID())
	res := f.activities.EndRaffle(ctx, p.Guild, r)
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	if err := common.UpdateComponentMessage(s, i, BuildRaffleEmbed(r), BuildRaffleComponents(r)); err != nil {
		log.WithError(err).Warn("Failed to update raffle message")
	}
	f.posts.Forget(messages...)

	if _, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: BuildResultContent(r, userIDs(res.Value())),
	}); err != nil {
		log.WithError(err).Warn("Failed to announce raffle winners")
	}
}

func userIDs(users []*models.User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

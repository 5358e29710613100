package prediction

import (
	"context"
	"errors"
	"fmt"

	"curator/activity"
	"curator/bot/common"
	"curator/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) participant(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*common.Participant, bool) {
	p, err := f.resolver.Resolve(ctx, s, i)
	if errors.Is(err, common.ErrNotInGuild) {
		common.RespondWithError(s, i, "Predictions can only be used in a server")
		return nil, false
	}
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve prediction participant")
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
		common.RespondWithError(s, i, "You need administrator permissions or an admin role to manage predictions")
		return nil, false
	}
	return p, true
}

func (f *Feature) current(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant) (*activity.Prediction, bool) {
	a, ok := f.activities.Current(p.Guild, models.ActivityKindPrediction)
	if !ok {
		common.RespondWithError(s, i, "No prediction is running")
		return nil, false
	}
	pred, _ := a.Prediction()
	return pred, true
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	title := "Prediction"
	var choices []string
	for _, opt := range options {
		if opt.Name == "title" {
			title = opt.StringValue()
			continue
		}
		if v := opt.StringValue(); v != "" {
			choices = append(choices, v)
		}
	}
	if len(choices) < 2 {
		common.RespondWithError(s, i, "A prediction needs at least two options")
		return
	}

	a, err := f.activities.StartPrediction(ctx, p.Guild, title, choices, p.User.ID)
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to start prediction")
		return
	}
	pred, _ := a.Prediction()

	msg, err := common.PostActivity(s, i, p.Settings().ActivityChannelID, BuildPredictionEmbed(pred), BuildPredictionComponents(pred))
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":    p.Guild.ID(),
			"activity_id": a.ID(),
			"error":       err,
		}).Error("Failed to post prediction message")
		return
	}

	f.posts.Track(msg)
	if res := f.activities.AttachMessage(p.Guild, msg.ID, a); !res.OK() {
		log.WithFields(log.Fields{
			"guild_id":   p.Guild.ID(),
			"message_id": msg.ID,
			"reason":     res.Message(),
		}).Warn("Failed to attach prediction message")
	}
}

func (f *Feature) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	pred, ok := f.current(s, i, p)
	if !ok {
		return
	}

	var winner string
	for _, opt := range options {
		if opt.Name == "winner" {
			winner = opt.StringValue()
		}
	}

	messages := p.Guild.MessagesFor(pred.ID())
	res := f.activities.EndPrediction(ctx, p.Guild, pred, winner)
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, messages, BuildPredictionEmbed(pred), BuildPredictionComponents(pred))
	f.posts.Forget(messages...)

	settlement := res.Value()
	ids := make([]string, len(settlement.Winners))
	for n, w := range settlement.Winners {
		ids[n] = w.ID
	}
	common.RespondWithMessage(s, i, fmt.Sprintf("🔮 **%s** settled on **%s**. %s tokens paid to %s",
		pred.Title(), settlement.Option, common.FormatBalance(settlement.TotalPool), common.MentionList(ids, "nobody")), false)
}

func (f *Feature) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	pred, ok := f.current(s, i, p)
	if !ok {
		return
	}

	res := f.activities.Reset(ctx, p.Guild, activity.OfPrediction(pred))
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, p.Guild.MessagesFor(pred.ID()), BuildPredictionEmbed(pred), BuildPredictionComponents(pred))
	common.RespondWithSuccess(s, i, res.Message(), true)
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	pred, ok := f.current(s, i, p)
	if !ok {
		return
	}

	messages := p.Guild.MessagesFor(pred.ID())
	res := f.activities.Cancel(ctx, p.Guild, activity.OfPrediction(pred))
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	f.posts.EditAll(s, messages, BuildPredictionEmbed(pred), BuildPredictionComponents(pred))
	f.posts.Forget(messages...)
	common.RespondWithSuccess(s, i, res.Message()+", all stakes refunded", true)
}

// HandleComponent opens the stake modal for the pressed option
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant, pred *activity.Prediction) {
	n, ok := ParseBetButtonID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	options := pred.Options()
	if n >= len(options) {
		common.RespondWithError(s, i, "That option no longer exists")
		return
	}
	if !pred.Running() {
		common.RespondWithError(s, i, "Prediction is not running")
		return
	}

	if err := common.RespondWithModal(s, i, BuildStakeModal(i.Message.ID, n, options[n])); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   p.Guild.ID(),
			"message_id": i.Message.ID,
			"error":      err,
		}).Error("Failed to open stake modal")
	}
}

// HandleModal places the stake submitted through the modal
func (f *Feature) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	messageID, n, ok := ParseStakeModalID(data.CustomID)
	if !ok {
		return
	}

	ctx := context.Background()
	p, ok := f.participant(ctx, s, i)
	if !ok {
		return
	}

	a, found := p.Guild.ActivityByMessage(messageID)
	pred, isPrediction := a.Prediction()
	if !found || !isPrediction {
		common.RespondWithError(s, i, "This prediction is over")
		return
	}

	options := pred.Options()
	if n >= len(options) {
		common.RespondWithError(s, i, "That option no longer exists")
		return
	}

	stake, err := ParseStake(stakeFromModal(data))
	if err != nil {
		common.RespondWithError(s, i, "Please enter a valid positive amount")
		return
	}

	res := f.activities.PlaceBet(ctx, p.Guild, pred, p.User, stake, options[n])
	if !res.OK() {
		common.RespondWithError(s, i, res.Message())
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("%s. Balance: %s tokens", res.Message(), common.FormatBalance(p.User.Tokens())), true)

	channelID, tracked := f.posts.Channel(messageID)
	if !tracked {
		channelID = i.ChannelID
	}
	common.EditActivityMessage(s, channelID, messageID, BuildPredictionEmbed(pred), BuildPredictionComponents(pred))
}

package bot

import (
	"context"
	"fmt"

	"curator/activity"
	"curator/bot/common"
	"curator/bot/features/balance"
	"curator/bot/features/prediction"
	"curator/bot/features/raffle"
	"curator/bot/features/settings"
	"curator/infrastructure/observability"
	"curator/models"
	"curator/registry"
	"curator/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token              string
	GuildID            string // Optional - register commands to one guild instead of globally
	DefaultWinnerSlots int
}

// InteractionRecorder counts handled interactions
type InteractionRecorder interface {
	RecordInteraction(interactionType string)
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	guilds   service.GuildService
	resolver *common.Resolver
	metrics  InteractionRecorder

	raffleFeature     *raffle.Feature
	predictionFeature *prediction.Feature
	settingsFeature   *settings.Feature
	balanceFeature    *balance.Feature
}

func New(config Config, guildService service.GuildService, userService service.UserService, activityService service.ActivityService, metrics InteractionRecorder) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	resolver := common.NewResolver(guildService, userService)
	posts := common.NewPostTracker()

	bot := &Bot{
		config:            config,
		session:           dg,
		guilds:            guildService,
		resolver:          resolver,
		metrics:           metrics,
		raffleFeature:     raffle.NewFeature(activityService, resolver, posts, config.DefaultWinnerSlots),
		predictionFeature: prediction.NewFeature(activityService, resolver, posts),
		settingsFeature:   settings.NewFeature(guildService, resolver),
		balanceFeature:    balance.New(userService, activityService, resolver),
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleInteraction)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildDelete)
	dg.AddHandler(bot.handleGuildMemberAdd)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Bot is ready")
}

// handleInteraction is the single entry point for every interaction. Panics
// raised by broken invariants are contained to the interaction that hit them.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer b.recoverInteraction(s, i)

	kind, ok := interactionType(i.Type)
	if !ok {
		return
	}
	if b.metrics != nil {
		b.metrics.RecordInteraction(kind)
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		if prediction.OwnsModal(i.ModalSubmitData().CustomID) {
			b.predictionFeature.HandleModal(s, i)
		}
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "ping":
		common.RespondWithMessage(s, i, fmt.Sprintf("🏓 Pong! %dms", s.HeartbeatLatency().Milliseconds()), true)
	case "balance", "leaderboard", "history", "set-balance":
		b.balanceFeature.HandleCommand(s, i)
	case "raffle":
		b.raffleFeature.HandleCommand(s, i)
	case "prediction":
		b.predictionFeature.HandleCommand(s, i)
	case "settings":
		b.settingsFeature.HandleCommand(s, i)
	}
}

// handleComponent finds the activity behind the pressed message and hands
// the interaction to the feature that owns that kind
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Message == nil {
		return
	}

	ctx := context.Background()
	p, err := b.resolver.Resolve(ctx, s, i)
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve component participant")
		return
	}

	a, ok := p.Guild.ActivityByMessage(i.Message.ID)
	if !ok {
		common.RespondWithError(s, i, "This activity is over")
		return
	}

	switch a.Kind() {
	case models.ActivityKindRaffle:
		r, _ := a.Raffle()
		b.raffleFeature.HandleComponent(s, i, p, r)
	case models.ActivityKindPrediction:
		pred, _ := a.Prediction()
		b.predictionFeature.HandleComponent(s, i, p, pred)
	default:
		log.WithFields(log.Fields{
			"guild_id":   p.Guild.ID(),
			"message_id": i.Message.ID,
			"kind":       a.Kind(),
		}).Error("Message mapped to unknown activity kind")
	}
}

func (b *Bot) recoverInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r := recover()
	if r == nil {
		return
	}

	fields := log.Fields{
		"interaction_id": i.ID,
		"guild_id":       i.GuildID,
		"panic":          r,
	}
	switch r.(type) {
	case *activity.InvariantError, *registry.InvariantError:
		log.WithFields(fields).Error("Invariant violated while handling interaction")
	default:
		log.WithFields(fields).Error("Panic while handling interaction")
	}
	common.RespondWithError(s, i, common.GenericErrorMessage)
}

// interactionType maps an interaction to its metrics label
func interactionType(t discordgo.InteractionType) (string, bool) {
	switch t {
	case discordgo.InteractionApplicationCommand:
		return observability.InteractionTypeCommand, true
	case discordgo.InteractionMessageComponent:
		return observability.InteractionTypeComponent, true
	case discordgo.InteractionModalSubmit:
		return observability.InteractionTypeModal, true
	default:
		return "", false
	}
}

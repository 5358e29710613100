package settings

import (
	"context"
	"errors"
	"fmt"

	"curator/bot/common"
	"curator/models"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) admin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*common.Participant, bool) {
	p, err := f.resolver.Resolve(ctx, s, i)
	if errors.Is(err, common.ErrNotInGuild) {
		common.RespondWithError(s, i, "Settings can only be changed in a server")
		return nil, false
	}
	if err != nil {
		common.HandleSystemError(s, i, err, "Failed to resolve settings participant")
		return nil, false
	}
	if !p.IsAdmin() {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return nil, false
	}
	return p, true
}

// update applies fn through the guild service and confirms with message
func (f *Feature) update(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, p *common.Participant, message string, fn func(*models.GuildSettings)) {
	if _, err := f.guilds.UpdateSettings(ctx, p.Guild, fn); err != nil {
		common.HandleSystemError(s, i, err, "Failed to update guild settings")
		return
	}
	common.RespondWithSuccess(s, i, message, true)
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}
	if err := common.RespondWithEmbed(s, i, BuildSettingsEmbed(p.Settings()), nil, true); err != nil {
		common.HandleSystemError(s, i, err, "Failed to show guild settings")
	}
}

func (f *Feature) handleStartingBalance(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	var amount int64
	for _, opt := range options {
		if opt.Name == "amount" {
			amount = opt.IntValue()
		}
	}
	if amount <= 0 {
		common.RespondWithError(s, i, "Starting balance must be positive")
		return
	}

	f.update(ctx, s, i, p, fmt.Sprintf("New users now start with %s tokens", common.FormatBalance(amount)), func(gs *models.GuildSettings) {
		gs.StartingBalance = amount
	})
}

func (f *Feature) handleAdminRole(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	var action, roleID string
	for _, opt := range options {
		switch opt.Name {
		case "action":
			action = opt.StringValue()
		case "role":
			roleID = opt.RoleValue(s, i.GuildID).ID
		}
	}
	if roleID == "" {
		common.RespondWithError(s, i, "Invalid role selected")
		return
	}

	var changed bool
	switch action {
	case "add":
		if _, err := f.guilds.UpdateSettings(ctx, p.Guild, func(gs *models.GuildSettings) { changed = gs.AddAdminRole(roleID) }); err != nil {
			common.HandleSystemError(s, i, err, "Failed to add admin role")
			return
		}
		if !changed {
			common.RespondWithError(s, i, fmt.Sprintf("<@&%s> is already an admin role", roleID))
			return
		}
		common.RespondWithSuccess(s, i, fmt.Sprintf("<@&%s> can now manage raffles and predictions", roleID), true)
	case "remove":
		if _, err := f.guilds.UpdateSettings(ctx, p.Guild, func(gs *models.GuildSettings) { changed = gs.RemoveAdminRole(roleID) }); err != nil {
			common.HandleSystemError(s, i, err, "Failed to remove admin role")
			return
		}
		if !changed {
			common.RespondWithError(s, i, fmt.Sprintf("<@&%s> is not an admin role", roleID))
			return
		}
		common.RespondWithSuccess(s, i, fmt.Sprintf("<@&%s> is no longer an admin role", roleID), true)
	default:
		common.RespondWithError(s, i, "Action must be add or remove")
	}
}

func (f *Feature) handleActivityChannel(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	var channelID *string
	for _, opt := range options {
		if opt.Name == "channel" {
			if ch := opt.ChannelValue(s); ch != nil && ch.ID != "" {
				id := ch.ID
				channelID = &id
			}
		}
	}

	message := "Activities will be posted in the channel they are started from"
	if channelID != nil {
		message = fmt.Sprintf("Activities will be posted in <#%s>", *channelID)
	}
	f.update(ctx, s, i, p, message, func(gs *models.GuildSettings) {
		gs.ActivityChannelID = channelID
	})
}

func (f *Feature) handleTierRole(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	p, ok := f.admin(ctx, s, i)
	if !ok {
		return
	}

	var roleID, tierValue string
	for _, opt := range options {
		switch opt.Name {
		case "role":
			roleID = opt.RoleValue(s, i.GuildID).ID
		case "tier":
			tierValue = opt.StringValue()
		}
	}
	if roleID == "" {
		common.RespondWithError(s, i, "Invalid role selected")
		return
	}
	tier, ok := models.ParseBonusTier(tierValue)
	if !ok {
		common.RespondWithError(s, i, fmt.Sprintf("Unknown tier %q", tierValue))
		return
	}

	message := fmt.Sprintf("<@&%s> now grants the %s tier", roleID, tier)
	if tier == models.TierNone {
		message = fmt.Sprintf("<@&%s> no longer grants a tier", roleID)
	}
	f.update(ctx, s, i, p, message, func(gs *models.GuildSettings) {
		if tier == models.TierNone {
			delete(gs.TierRoles, roleID)
			return
		}
		if gs.TierRoles == nil {
			gs.TierRoles = map[string]models.BonusTier{}
		}
		gs.TierRoles[roleID] = tier
	})
}

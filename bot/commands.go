package bot

import (
	"fmt"

	"curator/bot/features/prediction"
	"curator/models"

	"github.com/bwmarrin/discordgo"
)

// Commands returns every slash command the bot registers
func Commands() []*discordgo.ApplicationCommand {
	minWinners := float64(1)
	minAmount := float64(1)
	minBalance := float64(0)

	predictionStart := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "title",
			Description: "What is being predicted",
			Required:    true,
			MaxLength:   100,
		},
	}
	for n := 1; n <= prediction.MaxOptions; n++ {
		predictionStart = append(predictionStart, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        fmt.Sprintf("option%d", n),
			Description: fmt.Sprintf("Outcome #%d", n),
			Required:    n <= 2,
			MaxLength:   80,
		})
	}

	tierChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.AllBonusTiers))
	for _, tier := range models.AllBonusTiers {
		tierChoices = append(tierChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(tier),
			Value: string(tier),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check that the bot is alive",
		},
		{
			Name:        "balance",
			Description: "Check your token balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest members of this server",
		},
		{
			Name:        "history",
			Description: "Show recently finished raffles and predictions",
		},
		{
			Name:        "set-balance",
			Description: "Overwrite a member's token balance (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member whose balance is set",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "New balance in tokens",
					Required:    true,
					MinValue:    &minBalance,
				},
			},
		},
		{
			Name:        "raffle",
			Description: "Run ticket-weighted raffles",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a raffle (admin only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "title",
							Description: "What is being raffled",
							Required:    true,
							MaxLength:   100,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "winners",
							Description: "Number of distinct winners",
							Required:    false,
							MinValue:    &minWinners,
							MaxValue:    25,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Stop accepting entries to the running raffle (admin only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Resume accepting entries to the running raffle (admin only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Draw the winners of the running raffle (admin only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Clear all entries of the running raffle (admin only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Close the running raffle without a draw (admin only)",
				},
			},
		},
		{
			Name:        "prediction",
			Description: "Run parimutuel predictions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a prediction (admin only)",
					Options:     predictionStart,
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Settle the running prediction (admin only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "winner",
							Description: "The winning option, exactly as shown",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Refund every bet and keep the prediction open (admin only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Refund every bet and close the prediction (admin only)",
				},
			},
		},
		{
			Name:        "settings",
			Description: "Configure server settings (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "starting-balance",
					Description: "Set the tokens new members start with",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Starting balance in tokens",
							Required:    true,
							MinValue:    &minAmount,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "admin-role",
					Description: "Allow or disallow a role to manage activities",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "action",
							Description: "Add or remove the role",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "add", Value: "add"},
								{Name: "remove", Value: "remove"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "activity-channel",
					Description: "Post activities in one channel (leave empty to post where started)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The channel",
							Required:     false,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "tier-role",
					Description: "Map a role to a raffle bonus tier (none removes the mapping)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "tier",
							Description: "The bonus tier the role grants",
							Required:    true,
							Choices:     tierChoices,
						},
					},
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range Commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}

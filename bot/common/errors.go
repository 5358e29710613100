package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GenericErrorMessage is shown when a request failed for reasons the user
// cannot act on
const GenericErrorMessage = "Something went wrong. Please try again later."

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// HandleSystemError logs an infrastructure failure and shows the generic message
func HandleSystemError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, logMessage string) {
	fields := log.Fields{
		"guild_id": i.GuildID,
		"error":    err,
	}
	if i.Member != nil && i.Member.User != nil {
		fields["user_id"] = i.Member.User.ID
	}
	log.WithFields(fields).Error(logMessage)

	RespondWithError(s, i, GenericErrorMessage)
}

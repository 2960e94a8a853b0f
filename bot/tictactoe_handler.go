package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"bloop/bot/common"
	"bloop/config"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleTicTacToeChallenge(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	channelID, err := parseChannelID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var opponentUser *discordgo.User
	for _, opt := range options {
		if opt.Name == "opponent" {
			opponentUser = opt.UserValue(s)
		}
	}
	if opponentUser == nil {
		common.RespondWithError(s, i, "Invalid opponent.")
		return
	}
	if opponentUser.Bot {
		common.RespondWithError(s, i, "Bots don't play tic-tac-toe.")
		return
	}

	opponentID, err := strconv.ParseInt(opponentUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing opponent ID %s: %v", opponentUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	match, err := b.ticTacToeService.Challenge(guildID, channelID, userID, opponentID)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	embed := b.buildTicTacToeEmbed(s, i.GuildID, match)
	components := buildTicTacToeBoard(match)

	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to ttt challenge: %v", err)
	}
}

func (b *Bot) handleTicTacToeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	_, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Custom ID layout: ttt_<matchID>_<cell>
	lastSep := strings.LastIndex(customID, "_")
	if lastSep < 0 {
		return
	}
	matchID := customID[len("ttt_"):lastSep]
	cell, err := strconv.Atoi(customID[lastSep+1:])
	if err != nil {
		return
	}

	match, err := b.ticTacToeService.ApplyMove(ctx, matchID, userID, cell)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound):
			common.RespondWithError(s, i, "This match has expired.")
		case errors.Is(err, service.ErrNotInMatch):
			common.RespondWithError(s, i, "You're not playing in this match.")
		case errors.Is(err, service.ErrNotYourTurn):
			common.RespondWithError(s, i, "It's not your turn.")
		case errors.Is(err, service.ErrCellTaken):
			common.RespondWithError(s, i, "That spot is taken.")
		case errors.Is(err, service.ErrGameFinished):
			common.RespondWithError(s, i, "This match is already over.")
		default:
			log.Errorf("Error applying ttt move for %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to process that move. Please try again.")
		}
		return
	}

	embed := b.buildTicTacToeEmbed(s, i.GuildID, match)
	components := buildTicTacToeBoard(match)
	if match.Finished {
		components = common.DisableComponents(components)
	}

	if err := common.UpdateWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating ttt message: %v", err)
	}
}

func (b *Bot) buildTicTacToeEmbed(s *discordgo.Session, guildID string, match *service.Match) *discordgo.MessageEmbed {
	nameX := GetDisplayNameInt64(s, guildID, match.PlayerX)
	nameO := GetDisplayNameInt64(s, guildID, match.PlayerO)

	embed := &discordgo.MessageEmbed{
		Title: "⭕ Tic-Tac-Toe",
		Color: 0x8e24aa,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "❌", Value: nameX, Inline: true},
			{Name: "⭕", Value: nameO, Inline: true},
		},
	}

	switch {
	case match.Finished && match.Draw:
		embed.Description = "🤝 **It's a draw.**"
	case match.Finished:
		ctx := context.Background()
		currency := b.currencyName(ctx, match.GuildID)
		winnerName := GetDisplayNameInt64(s, guildID, match.WinnerID)
		embed.Description = fmt.Sprintf("🏆 **%s wins %s!**",
			winnerName, common.FormatCurrency(config.Get().TicTacToeReward, currency))
	case match.NextPlayer == match.PlayerX:
		embed.Description = fmt.Sprintf("**%s** (❌) to move.", nameX)
	default:
		embed.Description = fmt.Sprintf("**%s** (⭕) to move.", nameO)
	}

	return embed
}

// buildTicTacToeBoard renders the 9 cells as a 3x3 button grid
func buildTicTacToeBoard(match *service.Match) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, 3)
	for row := 0; row < 3; row++ {
		buttons := make([]discordgo.MessageComponent, 0, 3)
		for col := 0; col < 3; col++ {
			cell := row*3 + col
			label := "·"
			style := discordgo.SecondaryButton
			disabled := false
			switch match.Board[cell] {
			case service.MarkX:
				label = "❌"
				style = discordgo.DangerButton
				disabled = true
			case service.MarkO:
				label = "⭕"
				style = discordgo.PrimaryButton
				disabled = true
			}
			buttons = append(buttons, discordgo.Button{
				Label:    label,
				Style:    style,
				Disabled: disabled,
				CustomID: fmt.Sprintf("ttt_%s_%d", match.ID, cell),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

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
	"bloop/models"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleDiceStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

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

	var stake int64
	for _, opt := range options {
		if opt.Name == "stake" {
			stake = opt.IntValue()
		}
	}

	session, err := b.diceService.Start(ctx, guildID, channelID, userID, stake)
	if err != nil {
		if errors.Is(err, service.ErrSessionActive) {
			common.RespondWithError(s, i, "A dice pot is already open in this channel.")
			return
		}
		respondWagerError(s, i, err)
		return
	}

	currency := b.currencyName(ctx, guildID)
	starterName := GetDisplayName(s, i.GuildID, i.Member.User.ID)

	embed := &discordgo.MessageEmbed{
		Title: "🎲 Dice Pot",
		Description: fmt.Sprintf("**%s** opened a dice pot for **%s**!\nJoin before %s — highest roll takes the pot.",
			starterName,
			common.FormatCurrency(session.Stake, currency),
			common.FormatDiscordTimestamp(session.ClosesAt, "R")),
		Color: 0x1e88e5,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Join window: %s", config.Get().JoinWindow),
		},
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: "dice_join",
					Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
				},
			},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to dice start: %v", err)
	}
}

func (b *Bot) handleDiceInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	if customID != "dice_join" {
		return
	}

	ctx := context.Background()

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

	session, err := b.diceService.Join(ctx, channelID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionClosed):
			common.RespondWithError(s, i, "The join window has closed.")
		case errors.Is(err, service.ErrAlreadyJoined):
			common.RespondWithError(s, i, "You're already in this pot.")
		case strings.HasPrefix(err.Error(), "insufficient balance"):
			common.RespondWithError(s, i, "You can't cover the buy-in.")
		default:
			log.Errorf("Error joining dice pot for %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to join. Please try again.")
		}
		return
	}

	currency := b.currencyName(ctx, guildID)
	joinerName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	message := fmt.Sprintf("🎲 **%s** joined the pot! %d players in for **%s**.",
		joinerName, len(session.Participants), common.FormatCurrency(session.Pot(), currency))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to dice join: %v", err)
	}
}

// announcePotResult posts the settlement outcome back into the channel the
// session was started in
func (b *Bot) announcePotResult(result *models.PotResult) {
	ctx := context.Background()
	channelID := strconv.FormatInt(result.ChannelID, 10)
	guildID := strconv.FormatInt(result.GuildID, 10)
	currency := b.currencyName(ctx, result.GuildID)

	if result.Refunded {
		message := fmt.Sprintf("🎲 Nobody joined the pot. **%s** was returned to the starter.",
			common.FormatCurrency(result.Stake, currency))
		if _, err := b.session.ChannelMessageSend(channelID, message); err != nil {
			log.Errorf("Error announcing pot refund in %s: %v", channelID, err)
		}
		return
	}

	var sb strings.Builder
	sb.WriteString("🎲 **The dice have spoken!**\n")
	for _, roll := range result.Rolls {
		sb.WriteString(fmt.Sprintf("• %s rolled **%d**\n",
			GetDisplayNameInt64(b.session, guildID, roll.UserID), roll.Value))
	}

	winnerNames := make([]string, len(result.Winners))
	for idx, winnerID := range result.Winners {
		winnerNames[idx] = GetDisplayNameInt64(b.session, guildID, winnerID)
	}
	if len(result.Winners) == 1 {
		sb.WriteString(fmt.Sprintf("**%s** takes the pot of **%s**!",
			winnerNames[0], common.FormatCurrency(result.PrizeEach, currency)))
	} else {
		sb.WriteString(fmt.Sprintf("Tie! **%s** split the pot for **%s** each.",
			strings.Join(winnerNames, "**, **"), common.FormatCurrency(result.PrizeEach, currency)))
	}

	if _, err := b.session.ChannelMessageSend(channelID, sb.String()); err != nil {
		log.Errorf("Error announcing pot result in %s: %v", channelID, err)
	}
}

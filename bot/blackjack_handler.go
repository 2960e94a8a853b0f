package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"bloop/bot/common"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBlackjackStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
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

	game, err := b.blackjackService.Start(ctx, guildID, channelID, userID, stake)
	if err != nil {
		respondWagerError(s, i, err)
		return
	}

	currency := b.currencyName(ctx, guildID)
	embed := buildBlackjackEmbed(game, currency)

	var components []discordgo.MessageComponent
	if !game.Finished() {
		components = buildBlackjackButtons(game.ID)
	}

	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to blackjack start: %v", err)
	}
}

func (b *Bot) handleBlackjackInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var game *service.BlackjackGame
	switch {
	case strings.HasPrefix(customID, "bj_hit_"):
		game, err = b.blackjackService.Hit(ctx, strings.TrimPrefix(customID, "bj_hit_"), userID)
	case strings.HasPrefix(customID, "bj_stand_"):
		game, err = b.blackjackService.Stand(ctx, strings.TrimPrefix(customID, "bj_stand_"), userID)
	default:
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotYourGame):
			common.RespondWithError(s, i, "This isn't your game.")
		case errors.Is(err, service.ErrGameNotFound):
			common.RespondWithError(s, i, "This game has expired.")
		case errors.Is(err, service.ErrGameFinished):
			common.RespondWithError(s, i, "This game is already over.")
		default:
			log.Errorf("Error handling blackjack move for %d: %v", userID, err)
			common.RespondWithError(s, i, "Unable to process that move. Please try again.")
		}
		return
	}

	currency := b.currencyName(ctx, guildID)
	embed := buildBlackjackEmbed(game, currency)

	var components []discordgo.MessageComponent
	if !game.Finished() {
		components = buildBlackjackButtons(game.ID)
	} else {
		components = []discordgo.MessageComponent{}
	}

	if err := common.UpdateWithEmbed(s, i, embed, components); err != nil {
		log.Errorf("Error updating blackjack message: %v", err)
	}
}

func buildBlackjackButtons(gameID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("bj_hit_%s", gameID),
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("bj_stand_%s", gameID),
				},
			},
		},
	}
}

func formatHand(hand []service.Card) string {
	parts := make([]string, len(hand))
	for idx, c := range hand {
		parts[idx] = c.String()
	}
	return strings.Join(parts, " ")
}

func buildBlackjackEmbed(game *service.BlackjackGame, currency string) *discordgo.MessageEmbed {
	dealerHand := formatHand(game.DealerHand)
	dealerValue := fmt.Sprintf("%d", game.DealerValue())
	if !game.Finished() {
		// Hide the hole card while the player is still acting
		dealerHand = game.DealerHand[0].String() + " 🂠"
		dealerValue = "?"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Color: 0x2e8b57,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   fmt.Sprintf("Your hand (%d)", game.PlayerValue()),
				Value:  formatHand(game.PlayerHand),
				Inline: true,
			},
			{
				Name:   fmt.Sprintf("Dealer (%s)", dealerValue),
				Value:  dealerHand,
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Stake: %s", common.FormatCurrency(game.Stake, currency)),
		},
	}

	switch game.Outcome {
	case service.OutcomeNaturalWin:
		embed.Description = fmt.Sprintf("♠️ **Blackjack!** You win **%s**.", common.FormatCurrency(game.Payout, currency))
		embed.Color = 0xffd700
	case service.OutcomeWin:
		embed.Description = fmt.Sprintf("🎉 **You win %s!**", common.FormatCurrency(game.Payout, currency))
		embed.Color = 0x00c853
	case service.OutcomePush:
		embed.Description = "🤝 **Push.** Your stake was returned."
		embed.Color = 0x9e9e9e
	case service.OutcomeLoss:
		embed.Description = "💥 **You lose your stake.**"
		embed.Color = 0xd32f2f
	}

	return embed
}

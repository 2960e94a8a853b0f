package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bloop/bot/common"
	"bloop/models"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

// respondWagerError translates service failures into user-facing messages
func respondWagerError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var cooldownErr *service.CooldownError
	switch {
	case errors.As(err, &cooldownErr):
		common.RespondWithError(s, i, fmt.Sprintf("Slow down! You can gamble again %s.",
			common.FormatDiscordTimestamp(time.Now().Add(cooldownErr.Remaining), "R")))
	case strings.HasPrefix(err.Error(), "insufficient balance"):
		common.RespondWithError(s, i, "You don't have enough to cover that stake.")
	default:
		common.RespondWithError(s, i, err.Error())
	}
}

func (b *Bot) handleCoinFlip(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var stake int64
	var pick models.CoinFace
	for _, opt := range options {
		switch opt.Name {
		case "stake":
			stake = opt.IntValue()
		case "pick":
			pick = models.CoinFace(opt.StringValue())
		}
	}

	result, err := b.wagerService.FlipCoin(ctx, guildID, userID, stake, pick)
	if err != nil {
		respondWagerError(s, i, err)
		return
	}

	currency := b.currencyName(ctx, guildID)
	face := "🪙 Heads"
	if result.Landed == models.CoinTails {
		face = "🪙 Tails"
	}
	message := fmt.Sprintf("%s! %s", face,
		common.FormatWagerResult(result.Won, result.Stake, result.Payout, result.NewBalance, currency))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to coin flip: %v", err)
	}
}

func (b *Bot) handleWheelSpin(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var stake int64
	for _, opt := range options {
		if opt.Name == "stake" {
			stake = opt.IntValue()
		}
	}

	result, err := b.wagerService.SpinWheel(ctx, guildID, userID, stake)
	if err != nil {
		respondWagerError(s, i, err)
		return
	}

	currency := b.currencyName(ctx, guildID)
	var message string
	if result.Payout > 0 {
		message = fmt.Sprintf("🎡 The wheel landed on **%gx**! You receive **%s**. New balance: **%s**",
			result.Multiplier,
			common.FormatCurrency(result.Payout, currency),
			common.FormatCurrency(result.NewBalance, currency))
	} else {
		message = fmt.Sprintf("🎡 The wheel landed on **0x**. You lost **%s**. New balance: **%s**",
			common.FormatCurrency(result.Stake, currency),
			common.FormatCurrency(result.NewBalance, currency))
	}
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to wheel spin: %v", err)
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bloop/bot/common"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetID := userID
	targetUserID := i.Member.User.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target := opt.UserValue(s)
			if target == nil {
				common.RespondWithError(s, i, "Invalid user.")
				return
			}
			targetID, err = strconv.ParseInt(target.ID, 10, 64)
			if err != nil {
				log.Errorf("Error parsing target ID %s: %v", target.ID, err)
				common.RespondWithError(s, i, "Unable to process request. Please try again.")
				return
			}
			targetUserID = target.ID
		}
	}

	account, err := b.economyService.Balance(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error getting balance for %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	currency := b.currencyName(ctx, guildID)
	displayName := GetDisplayName(s, i.GuildID, targetUserID)

	var message string
	if targetID == userID {
		message = fmt.Sprintf("%s, your current balance: **%s**",
			displayName, common.FormatCurrency(account.Balance, currency))
	} else {
		message = fmt.Sprintf("**%s** has **%s**",
			displayName, common.FormatCurrency(account.Balance, currency))
	}
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (b *Bot) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.economyService.ClaimDaily(ctx, guildID, userID)
	if err != nil {
		var cooldownErr *service.CooldownError
		if errors.As(err, &cooldownErr) {
			common.RespondWithError(s, i, fmt.Sprintf("You already claimed today. Come back %s.",
				common.FormatDiscordTimestamp(time.Now().Add(cooldownErr.Remaining), "R")))
			return
		}
		log.Errorf("Error claiming daily for %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to claim daily. Please try again.")
		return
	}

	currency := b.currencyName(ctx, guildID)
	message := fmt.Sprintf("🪙 You claimed your daily **%s**! New balance: **%s**",
		common.FormatCurrency(result.Amount, currency),
		common.FormatCurrency(result.NewBalance, currency))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
}

func (b *Bot) handleRandomMoney(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.economyService.RandomMoney(ctx, guildID, userID)
	if err != nil {
		var cooldownErr *service.CooldownError
		if errors.As(err, &cooldownErr) {
			common.RespondWithError(s, i, fmt.Sprintf("Nothing to find yet. Try again %s.",
				common.FormatDiscordTimestamp(time.Now().Add(cooldownErr.Remaining), "R")))
			return
		}
		log.Errorf("Error rolling random money for %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to play right now. Please try again.")
		return
	}

	currency := b.currencyName(ctx, guildID)
	var message string
	if result.Amount == 0 {
		message = "🕳️ You rummaged around and found nothing."
	} else {
		message = fmt.Sprintf("💰 You found **%s**! New balance: **%s**",
			common.FormatCurrency(result.Amount, currency),
			common.FormatCurrency(result.NewBalance, currency))
	}
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to random money command: %v", err)
	}
}

func (b *Bot) handleGift(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var amount int64
	var recipientUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipientUser = opt.UserValue(s)
		}
	}
	if recipientUser == nil {
		common.RespondWithError(s, i, "Invalid recipient user.")
		return
	}

	toUserID, err := strconv.ParseInt(recipientUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing recipient ID %s: %v", recipientUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.economyService.Gift(ctx, guildID, userID, toUserID, amount)
	if err != nil {
		if strings.HasPrefix(err.Error(), "insufficient balance") {
			common.RespondWithError(s, i, "You don't have enough for that gift.")
		} else {
			common.RespondWithError(s, i, err.Error())
		}
		return
	}

	currency := b.currencyName(ctx, guildID)
	senderName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	recipientName := GetDisplayName(s, i.GuildID, recipientUser.ID)

	message := fmt.Sprintf("🎁 **%s** gifted **%s** to **%s**",
		senderName, common.FormatCurrency(result.Amount, currency), recipientName)
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to gift command: %v", err)
	}
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	accounts, err := b.economyService.Leaderboard(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error getting leaderboard for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	currency := b.currencyName(ctx, guildID)
	embed := buildLeaderboardEmbed(s, i.GuildID, accounts, currency)
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
}

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"bloop/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleCurrencyRename(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	if !hasManagePermission(i) {
		common.RespondWithError(s, i, "You need server management permissions to rename the currency.")
		return
	}

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name string
	for _, opt := range options {
		if opt.Name == "name" {
			name = opt.StringValue()
		}
	}

	applied, err := b.guildSettingsService.SetCurrencyName(ctx, guildID, name)
	if err != nil {
		log.Errorf("Error renaming currency for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to rename the currency. Please try again.")
		return
	}

	message := fmt.Sprintf("💱 The server currency is now called **%s**.", applied)
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to currency rename: %v", err)
	}
}

func (b *Bot) handleTreasuryTransfer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	if !hasManagePermission(i) {
		common.RespondWithError(s, i, "You need server management permissions to move treasury funds.")
		return
	}

	guildID, _, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var targetGuildRaw string
	var amount int64
	for _, opt := range options {
		switch opt.Name {
		case "target-guild-id":
			targetGuildRaw = opt.StringValue()
		case "amount":
			amount = opt.IntValue()
		}
	}

	targetGuildID, err := strconv.ParseInt(strings.TrimSpace(targetGuildRaw), 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "That doesn't look like a server ID.")
		return
	}

	if err := b.guildSettingsService.TransferTreasury(ctx, guildID, targetGuildID, amount); err != nil {
		if strings.HasPrefix(err.Error(), "insufficient treasury") {
			common.RespondWithError(s, i, "The treasury can't cover that transfer.")
		} else {
			common.RespondWithError(s, i, err.Error())
		}
		return
	}

	currency := b.currencyName(ctx, guildID)
	message := fmt.Sprintf("🏦 Transferred **%s** from the treasury to server `%d`.",
		common.FormatCurrency(amount, currency), targetGuildID)
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to treasury transfer: %v", err)
	}
}

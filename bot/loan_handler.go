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

func (b *Bot) handleBorrow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, lenderID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var amount int64
	var borrowerUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			borrowerUser = opt.UserValue(s)
		}
	}
	if borrowerUser == nil {
		common.RespondWithError(s, i, "Invalid borrower.")
		return
	}

	borrowerID, err := strconv.ParseInt(borrowerUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing borrower ID %s: %v", borrowerUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	loan, err := b.loanService.Propose(ctx, guildID, lenderID, borrowerID, amount)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	currency := b.currencyName(ctx, guildID)
	lenderName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	borrowerName := GetDisplayName(s, i.GuildID, borrowerUser.ID)

	embed := &discordgo.MessageEmbed{
		Title: "🤝 Loan Offer",
		Description: fmt.Sprintf("**%s** offers to lend **%s** to **%s**.\nOnly %s can accept or reject.",
			lenderName, common.FormatCurrency(loan.Amount, currency), borrowerName, lenderName),
		Color: 0x6d4c41,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Loan #%d", loan.ID),
		},
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("loan_accept_%d", loan.ID),
				},
				discordgo.Button{
					Label:    "Reject",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("loan_reject_%d", loan.ID),
				},
			},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to borrow command: %v", err)
	}
}

func (b *Bot) handleLoanInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var accept bool
	var rawID string
	switch {
	case strings.HasPrefix(customID, "loan_accept_"):
		accept = true
		rawID = strings.TrimPrefix(customID, "loan_accept_")
	case strings.HasPrefix(customID, "loan_reject_"):
		rawID = strings.TrimPrefix(customID, "loan_reject_")
	default:
		return
	}

	loanID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	loan, err := b.loanService.Resolve(ctx, loanID, userID, accept)
	if err != nil {
		if strings.Contains(err.Error(), "only the lender") {
			common.RespondWithError(s, i, "Only the lender can resolve this loan.")
		} else if strings.Contains(err.Error(), "already") {
			common.RespondWithError(s, i, "This loan was already resolved.")
		} else if strings.HasPrefix(err.Error(), "insufficient balance") {
			common.RespondWithError(s, i, "The lender can no longer cover this loan.")
		} else {
			log.Errorf("Error resolving loan %d: %v", loanID, err)
			common.RespondWithError(s, i, "Unable to resolve the loan. Please try again.")
		}
		return
	}

	currency := b.currencyName(ctx, guildID)
	lenderName := GetDisplayNameInt64(s, i.GuildID, loan.LenderID)
	borrowerName := GetDisplayNameInt64(s, i.GuildID, loan.BorrowerID)

	var description string
	color := 0x00c853
	if accept {
		description = fmt.Sprintf("✅ **%s** lent **%s** to **%s**.",
			lenderName, common.FormatCurrency(loan.Amount, currency), borrowerName)
	} else {
		description = fmt.Sprintf("❌ **%s** withdrew the loan offer to **%s**.", lenderName, borrowerName)
		color = 0xd32f2f
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🤝 Loan Offer",
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Loan #%d", loan.ID),
		},
	}

	if err := common.UpdateWithEmbed(s, i, embed, []discordgo.MessageComponent{}); err != nil {
		log.Errorf("Error updating loan message: %v", err)
	}
}

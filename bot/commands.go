package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check a member's balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily coins",
		},
		{
			Name:        "gift",
			Description: "Give coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to gift to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to gift",
					Required:    true,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest members of this server",
		},
		{
			Name:        "play",
			Description: "Play a game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "random",
					Description: "Scrounge around for free coins",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "dice",
					Description: "Start a dice pot anyone can join",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Buy-in everyone must match",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "coin",
					Description: "Flip a coin, double or nothing",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Amount to stake",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "pick",
							Description: "Heads or tails",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Heads", Value: "heads"},
								{Name: "Tails", Value: "tails"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "wheel",
					Description: "Spin the multiplier wheel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Amount to stake",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "blackjack",
					Description: "Play blackjack against the dealer",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Amount to stake",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ttt",
					Description: "Challenge someone to tic-tac-toe",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "opponent",
							Description: "Member to challenge",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "economy",
			Description: "Manage the server economy",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "currency",
					Description: "Rename the server currency (admins only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "New currency name (empty resets to default)",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "treasury-transfer",
					Description: "Send treasury funds to another server (admins only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "target-guild-id",
							Description: "Destination server ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount to transfer",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "borrow",
			Description: "Offer a loan to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to lend to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to lend",
					Required:    true,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handlePlayCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "random":
		b.handleRandomMoney(s, i)
	case "dice":
		b.handleDiceStart(s, i, options[0].Options)
	case "coin":
		b.handleCoinFlip(s, i, options[0].Options)
	case "wheel":
		b.handleWheelSpin(s, i, options[0].Options)
	case "blackjack":
		b.handleBlackjackStart(s, i, options[0].Options)
	case "ttt":
		b.handleTicTacToeChallenge(s, i, options[0].Options)
	}
}

func (b *Bot) handleEconomyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "currency":
		b.handleCurrencyRename(s, i, options[0].Options)
	case "treasury-transfer":
		b.handleTreasuryTransfer(s, i, options[0].Options)
	}
}

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"bloop/events"
	"bloop/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config               Config
	session              *discordgo.Session
	economyService       service.EconomyService
	wagerService         service.WagerService
	blackjackService     service.BlackjackService
	diceService          service.DiceService
	ticTacToeService     service.TicTacToeService
	guildSettingsService service.GuildSettingsService
	loanService          service.LoanService
	eventBus             *events.Bus
}

// Services bundles the service dependencies the bot drives
type Services struct {
	Economy       service.EconomyService
	Wager         service.WagerService
	Blackjack     service.BlackjackService
	Dice          service.DiceService
	TicTacToe     service.TicTacToeService
	GuildSettings service.GuildSettingsService
	Loan          service.LoanService
}

func New(config Config, services Services, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged

	bot := &Bot{
		config:               config,
		session:              dg,
		economyService:       services.Economy,
		wagerService:         services.Wager,
		blackjackService:     services.Blackjack,
		diceService:          services.Dice,
		ticTacToeService:     services.TicTacToe,
		guildSettingsService: services.GuildSettings,
		loanService:          services.Loan,
		eventBus:             eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponentInteractions)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Dice pots settle on a timer, so the announcement rides the event bus
	eventBus.Subscribe(events.EventTypePotSettled, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.PotSettledEvent); ok {
			bot.announcePotResult(e.Result)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "daily":
		b.handleDaily(s, i)
	case "gift":
		b.handleGift(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "play":
		b.handlePlayCommand(s, i)
	case "economy":
		b.handleEconomyCommand(s, i)
	case "borrow":
		b.handleBorrow(s, i)
	}
}

// handleComponentInteractions routes button presses by custom ID prefix
func (b *Bot) handleComponentInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "bj_"):
		b.handleBlackjackInteraction(s, i, customID)
	case strings.HasPrefix(customID, "dice_"):
		b.handleDiceInteraction(s, i, customID)
	case strings.HasPrefix(customID, "ttt_"):
		b.handleTicTacToeInteraction(s, i, customID)
	case strings.HasPrefix(customID, "loan_"):
		b.handleLoanInteraction(s, i, customID)
	}
}

// interactionIDs parses the guild and invoking user IDs off an interaction
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing guild ID %s: %w", i.GuildID, err)
	}
	userID, err = strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing user ID %s: %w", i.Member.User.ID, err)
	}
	return guildID, userID, nil
}

// parseChannelID converts a Discord channel snowflake to int64
func parseChannelID(channelID string) (int64, error) {
	return strconv.ParseInt(channelID, 10, 64)
}

// currencyName looks up the guild's currency label, falling back on errors
func (b *Bot) currencyName(ctx context.Context, guildID int64) string {
	guildConfig, err := b.guildSettingsService.Config(ctx, guildID)
	if err != nil {
		log.Errorf("Failed to load guild config for %d: %v", guildID, err)
		return "coins"
	}
	return guildConfig.CurrencyName
}

// hasManagePermission reports whether the member may run admin economy commands
func hasManagePermission(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	perms := i.Member.Permissions
	return perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionManageServer != 0 ||
		perms&discordgo.PermissionManageRoles != 0
}

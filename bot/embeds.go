package bot

import (
	"fmt"
	"strings"

	"bloop/bot/common"
	"bloop/models"

	"github.com/bwmarrin/discordgo"
)

var leaderboardMedals = []string{"🥇", "🥈", "🥉"}

func buildLeaderboardEmbed(s *discordgo.Session, guildID string, accounts []*models.Account, currency string) *discordgo.MessageEmbed {
	if len(accounts) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🏆 Leaderboard",
			Description: "Nobody has any " + currency + " yet.",
			Color:       0xf9a825,
		}
	}

	var sb strings.Builder
	for idx, account := range accounts {
		marker := fmt.Sprintf("`#%d`", idx+1)
		if idx < len(leaderboardMedals) {
			marker = leaderboardMedals[idx]
		}
		name := GetDisplayNameInt64(s, guildID, account.UserID)
		sb.WriteString(fmt.Sprintf("%s **%s** — %s\n",
			marker, name, common.FormatCurrency(account.Balance, currency)))
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: sb.String(),
		Color:       0xf9a825,
	}
}

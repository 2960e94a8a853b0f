package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatAmount formats a coin amount with thousand separators
func FormatAmount(amount int64) string {
	str := fmt.Sprintf("%d", amount)

	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	n := len(str)
	if n <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatCurrency renders an amount with the guild's currency label
func FormatCurrency(amount int64, currencyName string) string {
	return fmt.Sprintf("%s %s", FormatAmount(amount), currencyName)
}

// FormatWagerResult formats the outcome of a single-shot wager
func FormatWagerResult(won bool, stake, payout, newBalance int64, currencyName string) string {
	if won {
		return fmt.Sprintf("🎉 **You won!** You gained **%s**. New balance: **%s**",
			FormatCurrency(payout-stake, currencyName), FormatCurrency(newBalance, currencyName))
	}
	return fmt.Sprintf("😔 **You lost!** You lost **%s**. New balance: **%s**",
		FormatCurrency(stake, currencyName), FormatCurrency(newBalance, currencyName))
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

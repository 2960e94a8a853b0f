package models

// CoinFace is one of the two sides of the coin flip
type CoinFace string

const (
	CoinHeads CoinFace = "heads"
	CoinTails CoinFace = "tails"
)

// CoinFlipResult represents the outcome of a coin flip wager
type CoinFlipResult struct {
	Pick       CoinFace
	Landed     CoinFace
	Won        bool
	Stake      int64
	Payout     int64
	NewBalance int64
}

// WheelResult represents the outcome of a wheel spin wager
type WheelResult struct {
	Multiplier float64
	Stake      int64
	Payout     int64
	NewBalance int64
}

// DailyResult represents a daily claim
type DailyResult struct {
	Amount     int64
	NewBalance int64
}

// RandomMoneyResult represents a random-money find
type RandomMoneyResult struct {
	Amount     int64
	NewBalance int64
}

// GiftResult represents a completed peer-to-peer gift
type GiftResult struct {
	Amount     int64
	ToUserID   int64
	NewBalance int64
}

// PotResult represents the settlement of a multiplayer dice pot session
type PotResult struct {
	GuildID   int64
	ChannelID int64
	Stake     int64
	Pot       int64
	Refunded  bool    // fewer than 2 players joined; stake returned to the starter
	Rolls     []Roll  // settlement order, empty when refunded
	Winners   []int64 // user IDs that rolled the highest value
	PrizeEach int64   // floor(pot / len(winners)); remainder is forfeited
}

// Roll is a single participant's die roll
type Roll struct {
	UserID int64
	Value  int
}

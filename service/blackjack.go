package service

import (
	"fmt"
	"time"
)

// Card ranks; suits carry no value so a card is just its rank
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

// Suit exists for display only
type Suit string

const (
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
)

// Card is a single playing card
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// baseValue returns the card's value counting aces as 11
func (c Card) baseValue() int {
	switch c.Rank {
	case RankAce:
		return 11
	case RankTen, RankJack, RankQueen, RankKing:
		return 10
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	}
	return 0
}

// HandValue scores a hand, demoting aces from 11 to 1 while the total busts
func HandValue(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		total += c.baseValue()
		if c.Rank == RankAce {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// newDeck returns a single shuffled 52-card deck
func newDeck(rng Rand) []Card {
	ranks := []Rank{
		RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
		RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
	}
	suits := []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// BlackjackOutcome is the terminal state of a game
type BlackjackOutcome string

const (
	OutcomePlaying    BlackjackOutcome = "playing"
	OutcomeWin        BlackjackOutcome = "win"
	OutcomeNaturalWin BlackjackOutcome = "natural"
	OutcomeLoss       BlackjackOutcome = "loss"
	OutcomePush       BlackjackOutcome = "push"
)

// BlackjackGame is a single-player game against the dealer. All fields are
// owned by the service's registry lock; callers must treat them as read-only.
type BlackjackGame struct {
	ID         string
	GuildID    int64
	ChannelID  int64
	UserID     int64
	Stake      int64
	PlayerHand []Card
	DealerHand []Card
	Outcome    BlackjackOutcome
	Payout     int64
	LastAction time.Time

	deck []Card
}

// Finished reports whether the game has settled
func (g *BlackjackGame) Finished() bool {
	return g.Outcome != OutcomePlaying
}

// PlayerValue scores the player's hand
func (g *BlackjackGame) PlayerValue() int {
	return HandValue(g.PlayerHand)
}

// DealerValue scores the dealer's hand
func (g *BlackjackGame) DealerValue() int {
	return HandValue(g.DealerHand)
}

// draw takes the top card off the deck
func (g *BlackjackGame) draw() Card {
	c := g.deck[0]
	g.deck = g.deck[1:]
	return c
}

// playDealer draws for the dealer until the hand reaches at least 17
func (g *BlackjackGame) playDealer() {
	for HandValue(g.DealerHand) < 17 {
		g.DealerHand = append(g.DealerHand, g.draw())
	}
}

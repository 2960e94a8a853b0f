package service

import (
	"errors"
	"fmt"
	"time"
)

// Conflict and validation errors surfaced inline to the invoking user.
// None of these leave any state mutated.
var (
	ErrSessionActive   = errors.New("a dice game is already running in this channel")
	ErrSessionNotFound = errors.New("no dice game is open in this channel")
	ErrSessionClosed   = errors.New("the join window has closed")
	ErrAlreadyJoined   = errors.New("you already joined this game")
	ErrGameNotFound    = errors.New("game not found or expired")
	ErrNotYourGame     = errors.New("this isn't your game")
	ErrGameFinished    = errors.New("this game is already finished")
	ErrMatchNotFound   = errors.New("match not found or expired")
	ErrNotInMatch      = errors.New("you are not in this match")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrCellOutOfRange  = errors.New("cell must be between 0 and 8")
	ErrCellTaken       = errors.New("that spot is taken")
)

// CooldownError reports how long until a throttled action becomes eligible
type CooldownError struct {
	Name      string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Name, e.Remaining.Round(time.Second))
}

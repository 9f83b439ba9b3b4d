package game

import (
	"time"

	"github.com/playmatatu/labyrinth/internal/geom"
)

// GameStatus is the wire name of a State
type GameStatus string

const (
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusWon        GameStatus = "WON"
	StatusLost       GameStatus = "LOST"
)

// State is one of InProgress, Won or Lost. The set is closed: only this
// package can add variants.
type State interface {
	Status() GameStatus
	isState()
}

// InProgress is the initial state.
type InProgress struct{}

// Won is terminal: the ball reached the goal.
type Won struct{}

// Lost is terminal: the ball fell into Hole at TLost.
type Lost struct {
	Hole  geom.Point
	TLost time.Time
}

func (InProgress) Status() GameStatus { return StatusInProgress }
func (Won) Status() GameStatus        { return StatusWon }
func (Lost) Status() GameStatus       { return StatusLost }

func (InProgress) isState() {}
func (Won) isState()        {}
func (Lost) isState()       {}

// IsTerminal reports whether no further transition can happen from s.
func IsTerminal(s State) bool {
	_, inProgress := s.(InProgress)
	return !inProgress
}

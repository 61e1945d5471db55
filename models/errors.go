package models

import "errors"

// GameError is a player-facing validation failure. Handlers surface it
// as a 400 with the kebab code as the error body.
type GameError string

func (e GameError) Error() string { return string(e) }

var (
	ErrRealmNotFound = errors.New("realm-not-found")
	ErrCityNotFound  = errors.New("city-not-found")
	ErrArmyNotFound  = errors.New("army-not-found")
	ErrUserNotFound  = errors.New("user-not-found")
	ErrForbidden     = errors.New("forbidden")

	// ErrTurnInProgress is returned when a second advance is attempted
	// while a realm's turn lock is held. Mapped to 409.
	ErrTurnInProgress = errors.New("turn-already-running")
)

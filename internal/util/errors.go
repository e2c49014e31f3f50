package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Battle engine taxonomy.
	ErrInsufficientContent    = errors.New("bank and generator could not supply any questions")
	ErrBattleNotFound         = errors.New("battle not found")
	ErrBattleFull             = errors.New("battle already has two players")
	ErrBattleClosed           = errors.New("battle is completed and cannot be joined")
	ErrAlreadyEvaluated       = errors.New("answers already submitted for this battle")
	ErrParticipantNotFound    = errors.New("user is not a participant of this battle")
	ErrGenerationUnavailable  = errors.New("content generator unavailable")
	ErrGradingParseFailure    = errors.New("grader reply could not be parsed")
	ErrConcurrentModification = errors.New("battle was modified concurrently")
	ErrJoinCodeExhausted      = errors.New("could not allocate an unused join code")
)

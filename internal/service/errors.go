package service

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrResultNotFound      = errors.New("no results for this debate")

	ErrRoomNotOpen  = errors.New("room is not open for joining")
	ErrRoomFull     = errors.New("all debater seats are taken")
	ErrInvalidTeam  = errors.New("team must be \"for\" or \"against\"")
	ErrTeamFull     = errors.New("team is full")
	ErrInvalidInput = errors.New("invalid input")

	ErrDebateNotOngoing = errors.New("debate is not ongoing")
	ErrNotHost          = errors.New("only the host can do this")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrEmptyArgument    = errors.New("argument content is empty")
	ErrModeNotAllowed   = errors.New("submission mode not allowed in this room")

	ErrEmailTaken         = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

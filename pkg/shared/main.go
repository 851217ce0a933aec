package shared

import "fmt"

type Permission int

type ErrorType int

const (
	PermissionAdmin Permission = 1 << iota
	PermissionEveryone
)

const (
	ArgumentError ErrorType = iota
	AuthorizationError
	NotFoundError
	StateError
	ExecutionError
)

// CommandError is the caller-visible outcome of a failed operation. The type
// distinguishes refusals (authorization, state) from bad input and from
// failures of the operation itself.
type CommandError struct {
	ErrorType
	ErrorString string
}

func (e CommandError) Error() string {
	return e.ErrorString
}

func NewError(t ErrorType, format string, args ...interface{}) CommandError {
	return CommandError{ErrorType: t, ErrorString: fmt.Sprintf(format, args...)}
}

// Actor is whoever issued a command: their id and the role ids they hold.
type Actor struct {
	ID    string
	Roles []string
}

// ParticipantHandle identifies a community member to the core. The core
// never holds platform-native member objects, only these handles.
type ParticipantHandle struct {
	ID   string
	Name string
}

// Messenger posts to a destination channel.
type Messenger interface {
	Send(channelID, content string) error
	HasChannel(channelID string) bool
}

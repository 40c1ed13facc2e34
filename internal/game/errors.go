package game

import "fmt"

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown game id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Game with id %q doesn't exist", e.ID)
}

// InvalidStateError reports an operation on a finished game.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// ConflictError reports a full game or a duplicate action in a round.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func errInvalidMaxRounds() error {
	return &ValidationError{Message: `Please specify valid "max_rounds" parameter`}
}

func errMissingNickname() error {
	return &ValidationError{Message: `Please specify "nickname" parameter`}
}

func errInvalidAction() error {
	return &ValidationError{Message: `Please specify valid "action" parameter`}
}

func errGameFinished(id string) error {
	return &InvalidStateError{Message: fmt.Sprintf("Game with id %q is finished", id)}
}

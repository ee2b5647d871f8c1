package domain

import "fmt"

// Errors returned across the BFF. Handlers map them to HTTP statuses with
// errors.As, so wrap with %w and never compare by message.

// ErrNotFound indicates a backend answered 404 for Resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Resource, e.ID)
}

// ErrExternalService indicates a backend failed after retries.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates a backend call exceeded the request deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s: deadline exceeded", e.Operation)
}

// ErrCircuitOpen indicates calls to Service are short-circuited.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("%s backend unavailable: circuit open", e.Service)
}

// ErrValidation indicates user input rejected before any backend call.
// Field uses the JSON name the portal sent.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrForbidden indicates the backend refused Action for this party.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return "not allowed: " + e.Action
}

// ErrUnauthorized indicates a missing, invalid or rejected token.
// The portal answers it by redirecting to the login page.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrSessionUnresolvable indicates the token carries no organization claims.
// It is terminal for the session: the user is sent to RedirectURL.
type ErrSessionUnresolvable struct {
	RedirectURL string
}

func (e *ErrSessionUnresolvable) Error() string {
	return "party id not in token"
}

// ErrInvalidPartyState indicates the resolved party is not ACTIVE.
type ErrInvalidPartyState struct {
	Status string
}

func (e *ErrInvalidPartyState) Error() string {
	return "InvalidPartyState:" + e.Status
}

// ErrInvalidTransition indicates a transaction row action that is not legal
// in the row's current state or for the transaction's status.
type ErrInvalidTransition struct {
	From   string
	Action string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("action '%s' not allowed from state '%s'", e.Action, e.From)
}

// ErrConflict indicates the backend rejected a duplicate or stale mutation.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

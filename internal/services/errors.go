package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrRuleNotFound     = errors.New("rule not found")
	ErrSectionNotFound  = errors.New("section not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")

	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrAttemptStartConflict = errors.New("another attempt start is already in progress")
	ErrTestNotPublished     = errors.New("test is not published")
	ErrGeneratedNotEditable = errors.New("generated tests cannot be modified")
)

// ===== VALIDATION ERROR =====

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ===== INSUFFICIENT POOL ERROR =====

// InsufficientPoolError is returned when a rule's candidate pool cannot
// cover the number of questions the rule demands. Attempt generation is
// aborted as a whole, never padded with a partial pool.
type InsufficientPoolError struct {
	RuleID   uint   `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Found    int    `json:"found"`
	Required int    `json:"required"`
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient question pool for rule %q: found %d, required %d",
		e.RuleName, e.Found, e.Required)
}

func NewInsufficientPoolError(ruleID uint, ruleName string, found, required int) *InsufficientPoolError {
	return &InsufficientPoolError{RuleID: ruleID, RuleName: ruleName, Found: found, Required: required}
}

func IsInsufficientPoolError(err error) bool {
	var pe *InsufficientPoolError
	return errors.As(err, &pe)
}

// ===== INVALID STATE ERROR =====

// InvalidStateError is returned when an operation is attempted against an
// attempt whose lifecycle state does not permit it.
type InvalidStateError struct {
	AttemptID uint   `json:"attempt_id"`
	State     string `json:"state"`
	Operation string `json:"operation"`
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s attempt %d in state %s", e.Operation, e.AttemptID, e.State)
}

func NewInvalidStateError(attemptID uint, state, operation string) *InvalidStateError {
	return &InvalidStateError{AttemptID: attemptID, State: state, Operation: operation}
}

func IsInvalidStateError(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

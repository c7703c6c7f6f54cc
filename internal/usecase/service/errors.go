package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errEmptyId = errors.New("empty id")
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is сравнивает по коду и сообщению, чтобы errors.Is работал с обёрнутыми копиями
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

var (
	// NOT_FOUND
	ErrTeamNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "team not found",
	}
	ErrReviewerNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "reviewer not found",
	}
	ErrTagNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "tag not found",
	}
	ErrSnapshotNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "snapshot not found",
	}
	ErrActiveAssignmentNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "active assignment not found",
	}

	// TEAM_EXISTS
	ErrTeamExists = &DomainError{
		Code:    "TEAM_EXISTS",
		Message: "team_name already exists",
	}

	// CONFLICT
	ErrEmailTaken = &DomainError{
		Code:    "CONFLICT",
		Message: "email already in use in this team",
	}
	ErrTagExists = &DomainError{
		Code:    "CONFLICT",
		Message: "tag name already exists in this team",
	}

	// NO_CANDIDATE
	ErrNoCandidate = &DomainError{
		Code:    "NO_CANDIDATE",
		Message: "no available reviewer",
	}

	// NOTHING_TO_UNDO
	ErrNothingToUndo = &DomainError{
		Code:    "NOTHING_TO_UNDO",
		Message: "assignment history is empty",
	}

	// UNAUTHORIZED
	ErrNotParty = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "only the assignee or the assigner can complete this assignment",
	}

	// INVALID_INPUT
	ErrInvalidInput = &DomainError{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}
)

// normalizeID проверяет идентификатор и обрезает пробелы
func normalizeID(id, field string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s", errEmptyId, field)
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

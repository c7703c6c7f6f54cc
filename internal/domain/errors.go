package domain

import (
	"errors"
	"fmt"
)

// Ошибки слоя хранения, общие для postgres и in-memory реализаций
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

// ErrTeamNotFound отдельная ошибка транзакции команды, совместима с ErrNotFound
var ErrTeamNotFound = fmt.Errorf("team %w", ErrNotFound)

package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHandleDBError_NoRows(t *testing.T) {
	err := handleDBError(pgx.ErrNoRows)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleDBError_Constraints(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{name: "unique violation", code: pgerrcode.UniqueViolation, want: domain.ErrAlreadyExists},
		{name: "foreign key violation", code: pgerrcode.ForeignKeyViolation, want: domain.ErrInvalidInput},
		{name: "not null violation", code: pgerrcode.NotNullViolation, want: domain.ErrInvalidInput},
		{name: "check violation", code: pgerrcode.CheckViolation, want: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleDBError(&pgconn.PgError{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandleDBError_UnknownPgCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	err := handleDBError(pgErr)
	assert.Equal(t, pgErr, err)
}

func TestHandleDBError_UnknownError(t *testing.T) {
	unknownErr := errors.New("unknown error")
	err := handleDBError(unknownErr)
	assert.Equal(t, unknownErr, err)
}

func TestHandleDBError_Nil(t *testing.T) {
	err := handleDBError(nil)
	assert.NoError(t, err)
}

func TestNotFound_WrapsDomainSentinel(t *testing.T) {
	err := notFound("reviewer", pgx.ErrNoRows)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTeamNotFound)

	other := errors.New("conn reset")
	assert.Equal(t, other, notFound("reviewer", other))
}

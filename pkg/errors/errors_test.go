package errors_test

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/careroster/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "client",
			ID:       "AZ-1000",
		}
		assert.Equal(t, "client with ID AZ-1000 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("overlay", "AZ-1")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("id", "", "cannot be empty")
		assert.Equal(t, "validation failed for field id: cannot be empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "duplicate client"}
		assert.Equal(t, "validation failed: duplicate client", err.Error())
	})
}

func TestUnresolvedError(t *testing.T) {
	err := pkgerrors.NewUnresolvedError("events", 4, "山田花子|やまだはなこ", "ambiguous")
	assert.Contains(t, err.Error(), "row 4")
	assert.Contains(t, err.Error(), "events")
	assert.Contains(t, err.Error(), "ambiguous")
	assert.True(t, pkgerrors.IsUnresolved(err))
	assert.True(t, pkgerrors.IsRecoverable(err))

	noKey := pkgerrors.NewUnresolvedError("baseline", 2, "", "no-key")
	assert.Equal(t, "unresolved row 2 from baseline: no-key", noKey.Error())
}

func TestMalformedValueError(t *testing.T) {
	err := pkgerrors.NewMalformedValueError("birth_date", "2025/13/45", "")
	assert.Equal(t, `malformed birth_date value "2025/13/45", using ""`, err.Error())
	assert.True(t, pkgerrors.IsMalformed(err))
	assert.True(t, pkgerrors.IsRecoverable(err))
}

func TestSourceUnavailableError(t *testing.T) {
	base := errors.New("connection refused")
	err := pkgerrors.NewSourceUnavailableError("baseline", 4, base)

	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.True(t, pkgerrors.IsSourceUnavailable(err))
	assert.False(t, pkgerrors.IsRecoverable(err))
	assert.ErrorIs(t, err, base)
}

func TestSerializationError(t *testing.T) {
	ioErr := pkgerrors.NewIOError("rename", "/data/registry.yaml", errors.New("disk full"))
	err := pkgerrors.WrapSerialization("write", "/data/registry.yaml", ioErr)

	assert.True(t, pkgerrors.IsSerialization(err))

	var target *pkgerrors.IOError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "rename", target.Operation)

	assert.Nil(t, pkgerrors.WrapSerialization("write", "x", nil))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("overlay", "unsupported DSN scheme", nil)
	assert.Contains(t, err.Error(), "overlay")
	assert.Contains(t, err.Error(), "unsupported DSN scheme")
}

func TestMergeError(t *testing.T) {
	base := errors.New("type mismatch")
	err := pkgerrors.NewMergeError("AZ-1", "gender", base)
	assert.Contains(t, err.Error(), "AZ-1")
	assert.Contains(t, err.Error(), "gender")
	assert.Equal(t, base, err.Unwrap())

	noField := pkgerrors.NewMergeError("AZ-2", "", base)
	assert.NotContains(t, noField.Error(), "field")
}

func TestIOError(t *testing.T) {
	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.NewIOError("write", "/data/registry.yaml", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("open", "https://example.com/roster.csv", errors.New("network error"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "open", ioErr.Operation)
		assert.Equal(t, "https://example.com/roster.csv", ioErr.Path)
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("open", "overlay", "sqlite", pkgerrors.ErrAlreadyExists)
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "overlay", resErr.Resource)
	assert.True(t, errors.Is(err, pkgerrors.ErrAlreadyExists))
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "csv", File: "roster.csv", Line: 12, Message: "wrong number of fields"}
		assert.Equal(t, "parse error in csv at roster.csv:12: wrong number of fields", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapParse("yaml", "registry.yaml", errors.New("bad indent"))
		assert.Contains(t, err.Error(), "registry.yaml")
		assert.Contains(t, err.Error(), "bad indent")
	})
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("run", "30m", "deadline exceeded")
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Contains(t, err.Error(), "after 30m")
	assert.NoError(t, err.Unwrap())

	err.Err = context.DeadlineExceeded
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, pkgerrors.IsTimeout(err))
}

func TestMalformedValueErrorCause(t *testing.T) {
	err := pkgerrors.NewMalformedValueError("room_number", "203", "")
	assert.Equal(t, `malformed room_number value "203", using ""`, err.Error())

	err.Err = pkgerrors.ErrInvalidInput
	assert.True(t, pkgerrors.IsMalformed(err))
	assert.True(t, pkgerrors.IsRecoverable(err))
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), pkgerrors.ErrInvalidInput.Error())
}

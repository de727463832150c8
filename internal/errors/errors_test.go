package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestPathError(t *testing.T) {
	pathErr := NewPathError("outside vault", "/etc/passwd", InvalidPath, nil)
	assert.Equal(t, "outside vault: /etc/passwd", pathErr.Error())
	assert.Equal(t, "/etc/passwd", pathErr.Path())
	assert.True(t, Is(pathErr, ErrInvalidPath))

	withCause := NewPathError("cannot stat", "a.md", PathNotFound, errors.New("boom"))
	assert.Equal(t, "cannot stat: a.md: boom", withCause.Error())
	assert.False(t, Is(withCause, ErrInvalidPath))
}

func TestOrderError(t *testing.T) {
	err := NewOrderError("cannot move up", "notes/a.md", BoundaryViolation, nil)
	assert.Equal(t, "cannot move up: notes/a.md (boundary violation)", err.Error())
	assert.Equal(t, "notes/a.md", err.ID())
	assert.Equal(t, BoundaryViolation, KindOf(fmt.Errorf("cli: %w", err)))

	assert.True(t, IsHostUnavailable(Wrap(ErrHostUnavailable, "activate")))
	assert.False(t, IsHostUnavailable(err))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("invalid value", "store", InvalidConfig, nil)
	assert.Equal(t, "invalid value: store", err.Error())
	assert.Equal(t, "store", err.Param())
	assert.True(t, IsInvalidConfig(err))
	assert.False(t, IsInvalidConfig(New("plain")))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("save failed", StoreWriteFailed, cause).
		WithOperation("save").
		WithContext("path", "/tmp/settings.yaml")

	assert.Equal(t, "save failed: operation=save: disk full", err.Error())
	assert.Equal(t, "save", err.Operation())
	assert.Equal(t, "/tmp/settings.yaml", err.Context()["path"])
	assert.True(t, IsStoreError(err))
	assert.True(t, Is(err, cause))
	assert.Equal(t, StoreWriteFailed, KindOf(err))
}

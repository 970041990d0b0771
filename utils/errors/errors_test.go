package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tdhoang/evdealer-client/constant"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
)

func TestCustomError_TableMessage(t *testing.T) {
	err := cerr.SetCustomError(constant.ErrNotFound)
	assert.Equal(t, constant.ErrorTypeMessage[constant.ErrNotFound], err.Error())
	assert.Equal(t, constant.ErrorTypeCode[constant.ErrNotFound], err.ErrorCode())
	assert.Equal(t, constant.ErrNotFound, err.Type())
}

func TestCustomError_VerbatimMessage(t *testing.T) {
	err := cerr.SetCustomErrorMessage(constant.ErrDomain, "cannot change status from PAID to APPROVED")
	assert.Equal(t, "cannot change status from PAID to APPROVED", err.Error())
	assert.Equal(t, constant.ErrDomain, err.Type())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, constant.Successful, cerr.TypeOf(nil))
	assert.Equal(t, constant.ErrTimeout, cerr.TypeOf(cerr.SetCustomError(constant.ErrTimeout)))
	assert.Equal(t, constant.ErrInternal, cerr.TypeOf(fmt.Errorf("plain error")))

	wrapped := fmt.Errorf("load detail: %w", cerr.SetCustomError(constant.ErrNotFound))
	assert.Equal(t, constant.ErrNotFound, cerr.TypeOf(wrapped))
}

func TestIsType(t *testing.T) {
	err := cerr.SetCustomError(constant.ErrUnauthorized)
	assert.True(t, cerr.IsType(err, constant.ErrUnauthorized))
	assert.False(t, cerr.IsType(err, constant.ErrNetwork))
	assert.False(t, cerr.IsType(nil, constant.ErrUnauthorized))
}

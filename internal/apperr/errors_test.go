package apperr

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	err := NewValidationError("name", "cannot be blank")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation: name: cannot be blank", err.Error())
}

func TestFromValidation_CollectsFields(t *testing.T) {
	src := validation.Errors{
		"name":     errors.New("cannot be blank"),
		"quantity": errors.New("must be no less than 1"),
	}

	err := FromValidation(src)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "cannot be blank", ve.Fields["name"])
	assert.Equal(t, "must be no less than 1", ve.Fields["quantity"])
	assert.Equal(t, "validation: 2 errors", ve.Error())
}

func TestFromValidation_Nil(t *testing.T) {
	assert.NoError(t, FromValidation(nil))
}

func TestStoreAccess_Wraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreAccess("find items", cause)

	assert.ErrorIs(t, err, ErrStoreAccess)
	assert.ErrorIs(t, err, cause)
}

package kernel_test

import (
	"strconv"
	"testing"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPickupCode(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "lowest code", input: "100000"},
		{name: "highest code", input: "999999"},
		{name: "empty", input: "", wantErr: errs.ErrValueIsRequired},
		{name: "too short", input: "12345", wantErr: errs.ErrValueIsInvalid},
		{name: "too long", input: "1234567", wantErr: errs.ErrValueIsInvalid},
		{name: "not numeric", input: "12a456", wantErr: errs.ErrValueIsInvalid},
		{name: "leading zero", input: "012345", wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := kernel.NewPickupCode(tc.input)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.True(t, code.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.input, code.String())
			require.NoError(t, code.Validate())
		})
	}
}

func TestNewRandomPickupCode(t *testing.T) {
	for range 1000 {
		code, err := kernel.NewRandomPickupCode()
		require.NoError(t, err)
		require.Len(t, code.String(), kernel.PickupCodeLength)

		n, err := strconv.Atoi(code.String())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)

		parsed, err := kernel.NewPickupCode(code.String())
		require.NoError(t, err)
		assert.True(t, parsed.IsEqual(code))
	}
}

func TestPickupCode_ZeroValue(t *testing.T) {
	var code kernel.PickupCode

	assert.True(t, code.IsZero())
	require.ErrorIs(t, code.Validate(), kernel.ErrPickupCodeIsNotConstructed)
}

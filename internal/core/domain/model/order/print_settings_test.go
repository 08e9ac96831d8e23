package order_test

import (
	"testing"

	"kiosk/internal/core/domain/model/order"
	"kiosk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFile(t *testing.T, color order.ColorMode, pages, copies int) order.PrintFile {
	t.Helper()
	f, err := order.NewPrintFile("file.pdf", color, pages, copies)
	require.NoError(t, err)
	return f
}

func TestPrintSettings_Amount(t *testing.T) {
	t.Run("should price colored and monochrome pages across copies", func(t *testing.T) {
		settings, err := order.NewPrintSettings([]order.PrintFile{
			mustFile(t, order.Color, 2, 1),
			mustFile(t, order.Monochrome, 3, 2),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(10*2*1+3*3*2), settings.Amount())
		assert.Equal(t, int64(38), settings.Amount())
		assert.Equal(t, 2+6, settings.TotalPages())
	})

	t.Run("should be deterministic", func(t *testing.T) {
		files := []order.PrintFile{mustFile(t, order.Color, 7, 3)}
		a, _ := order.NewPrintSettings(files)
		b, _ := order.NewPrintSettings(files)

		assert.Equal(t, a.Amount(), b.Amount())
		assert.Equal(t, int64(210), a.Amount())
	})
}

func TestNewPrintSettings(t *testing.T) {
	t.Run("should require files", func(t *testing.T) {
		_, err := order.NewPrintSettings(nil)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject zero-value files", func(t *testing.T) {
		_, err := order.NewPrintSettings([]order.PrintFile{{}})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should not share backing array with caller", func(t *testing.T) {
		files := []order.PrintFile{mustFile(t, order.Color, 1, 1)}
		settings, err := order.NewPrintSettings(files)
		require.NoError(t, err)

		files[0] = mustFile(t, order.Color, 100, 100)

		assert.Equal(t, int64(10), settings.Amount())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var settings order.PrintSettings

		require.ErrorIs(t, settings.Validate(), order.ErrPrintSettingsIsNotConstructed)
	})
}

func TestNewPrintFile(t *testing.T) {
	testCases := []struct {
		name    string
		color   order.ColorMode
		pages   int
		copies  int
		wantErr error
	}{
		{name: "valid color", color: order.Color, pages: 1, copies: 1},
		{name: "zero pages", color: order.Color, pages: 0, copies: 1, wantErr: errs.ErrValueIsOutOfRange},
		{name: "negative pages", color: order.Monochrome, pages: -3, copies: 1, wantErr: errs.ErrValueIsOutOfRange},
		{name: "zero copies", color: order.Monochrome, pages: 3, copies: 0, wantErr: errs.ErrValueIsOutOfRange},
		{name: "unknown color", color: order.UnknownColor, pages: 3, copies: 1, wantErr: errs.ErrValueIsInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := order.NewPrintFile("a.pdf", tc.color, tc.pages, tc.copies)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseColorMode(t *testing.T) {
	for input, want := range map[string]order.ColorMode{
		"COLOR": order.Color, "color": order.Color, "BW": order.Monochrome, "mono": order.Monochrome,
	} {
		got, err := order.ParseColorMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := order.ParseColorMode("sepia")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

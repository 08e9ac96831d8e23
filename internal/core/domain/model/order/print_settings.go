package order

import (
	"errors"
	"fmt"
	"strings"

	"kiosk/internal/pkg/errs"
	"kiosk/internal/pkg/guard"
)

const (
	// ColorPagePrice is the price in currency units of one colored page.
	ColorPagePrice = 10
	// MonochromePagePrice is the price in currency units of one monochrome page.
	MonochromePagePrice = 3

	maxPageCount = 10000
	maxCopies    = 999
)

var ErrPrintSettingsIsNotConstructed = errors.New("PrintSettings must be created via NewPrintSettings constructor")

// ColorMode selects the ink used for a file.
type ColorMode int

const (
	UnknownColor ColorMode = iota
	Color
	Monochrome
)

// ParseColorMode accepts "COLOR"/"COLOUR" and "BW"/"MONO"/"MONOCHROME", any case.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COLOR", "COLOUR":
		return Color, nil
	case "BW", "MONO", "MONOCHROME", "GRAYSCALE":
		return Monochrome, nil
	}
	return UnknownColor, errs.NewValueIsInvalidErrorWithCause("color", fmt.Errorf("%q is not a color mode", s))
}

func (c ColorMode) String() string {
	switch c {
	case Color:
		return "COLOR"
	case Monochrome:
		return "BW"
	default:
		return "UNKNOWN"
	}
}

// PagePrice returns the unit price of one page in this mode.
func (c ColorMode) PagePrice() int64 {
	if c == Color {
		return ColorPagePrice
	}
	return MonochromePagePrice
}

// PrintFile is the print configuration of one uploaded file.
type PrintFile struct {
	name      string
	color     ColorMode
	pageCount int
	copies    int
}

// NewPrintFile validates one file's configuration. name is informational and may be empty.
func NewPrintFile(name string, color ColorMode, pageCount, copies int) (PrintFile, error) {
	var errList []error
	if color != Color && color != Monochrome {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("color", fmt.Errorf("%d is not a color mode", color)))
	}
	if pageCount < 1 || pageCount > maxPageCount {
		errList = append(errList, errs.NewValueIsOutOfRangeError("pageCount", pageCount, 1, maxPageCount))
	}
	if copies < 1 || copies > maxCopies {
		errList = append(errList, errs.NewValueIsOutOfRangeError("copies", copies, 1, maxCopies))
	}
	if err := errors.Join(errList...); err != nil {
		return PrintFile{}, err
	}
	return PrintFile{name: strings.TrimSpace(name), color: color, pageCount: pageCount, copies: copies}, nil
}

func (f PrintFile) Name() string { return f.name }
func (f PrintFile) Color() ColorMode { return f.color }
func (f PrintFile) PageCount() int { return f.pageCount }
func (f PrintFile) Copies() int { return f.copies }

// Pages is the number of printed pages for this file across all copies.
func (f PrintFile) Pages() int {
	return f.pageCount * f.copies
}

// Amount is the price of this file across all copies.
func (f PrintFile) Amount() int64 {
	return f.color.PagePrice() * int64(f.Pages())
}

// PrintSettings is the immutable snapshot of print configuration captured when
// an order is created.
type PrintSettings struct {
	files []PrintFile
	guard guard.ConstructorGuard
}

// NewPrintSettings requires at least one file.
func NewPrintSettings(files []PrintFile) (PrintSettings, error) {
	if len(files) == 0 {
		return PrintSettings{}, errs.NewValueIsRequiredError("printSettings.files")
	}
	for i, f := range files {
		if f.pageCount < 1 || f.copies < 1 || (f.color != Color && f.color != Monochrome) {
			return PrintSettings{}, errs.NewValueIsInvalidErrorWithCause(
				"printSettings.files", fmt.Errorf("file #%d must be created via NewPrintFile", i),
			)
		}
	}
	copied := make([]PrintFile, len(files))
	copy(copied, files)
	return PrintSettings{files: copied, guard: guard.NewConstructorGuard()}, nil
}

func (s PrintSettings) Validate() error {
	return s.guard.Validate(ErrPrintSettingsIsNotConstructed)
}

// Files returns a copy of the configured files.
func (s PrintSettings) Files() []PrintFile {
	out := make([]PrintFile, len(s.files))
	copy(out, s.files)
	return out
}

// Amount sums price × pages × copies over all files.
func (s PrintSettings) Amount() int64 {
	var total int64
	for _, f := range s.files {
		total += f.Amount()
	}
	return total
}

// TotalPages sums pages × copies over all files.
func (s PrintSettings) TotalPages() int {
	total := 0
	for _, f := range s.files {
		total += f.Pages()
	}
	return total
}

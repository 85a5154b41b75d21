package ot

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds. Every structural error returned by this module wraps one of these,
// so clients may discriminate with errors.Is.
var (
	// ErrFormat flags unrecognized magic numbers, unsupported table versions or
	// formats and truncated or inconsistent data.
	ErrFormat = errors.New("unsupported or corrupt font")
	// ErrEncodingUnavailable flags a font whose only character map uses a legacy
	// encoding for which no converter is available.
	ErrEncodingUnavailable = errors.New("unsupported encoding")
)

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font decoding.
type FontError struct {
	Table    Tag           // The table where the error occurred (e.g., "GPOS", "cmap")
	Section  string        // Specific section within the table (e.g., "LookupType6", "format 4")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the font file where the error occurred (0 if unknown)
	Kind     error         // ErrFormat, ErrEncodingUnavailable or a kind defined by a sister package
}

// Error implements the error interface.
func (e *FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap returns the kind of the error.
func (e *FontError) Unwrap() error {
	if e.Kind == nil {
		return ErrFormat
	}
	return e.Kind
}

// FormatError creates a critical format error for table and section.
func FormatError(table Tag, section string, format string, args ...any) error {
	return &FontError{
		Table:    table,
		Section:  section,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
		Kind:     ErrFormat,
	}
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return &FontError{Section: "font", Issue: message, Severity: SeverityCritical, Kind: ErrFormat}
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // The table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset in the font file where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates warnings and non-fatal errors during font parsing.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
		Kind:     ErrFormat,
	})
}

func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	tracer().Debugf("font warning: %s: %s", table, issue)
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// ---------------------------------------------------------------------------

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxScriptCount    = 50    // Scripts: typically < 10
	MaxFeatureCount   = 500   // Features: typically < 200
	MaxLookupCount    = 1000  // Lookups: typically < 100
	MaxGlyphCount     = 65536 // Maximum glyph index (uint16)
	MaxCoverageCount  = 65535 // Coverage tables
	MaxClassDefCount  = 65535 // Class definitions
	MaxTableCount     = 256   // Tables in a font's directory
	MaxCmapSubtables  = 64    // Encoding records in 'cmap'
	MaxCmapGroupCount = 1 << 20
)

// Maximum recursion/nesting depths to prevent stack overflow.
const (
	MaxExtensionDepth = 16 // Maximum Extension lookup nesting
	MaxContextDepth   = 8  // Maximum nesting of contextual lookups
)

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

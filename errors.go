package gridcalc

import "errors"

// ErrorCode identifies the standard in-cell error sentinels. Error values
// live inside cells and flow through evaluation; they are not Go errors
// crossing the engine boundary.
type ErrorCode uint8

const (
	// ErrCodeRef - reference targets a retired identifier or a position
	// outside the live axis extents.
	ErrCodeRef ErrorCode = 1

	// ErrCodeCycle - formula would close a dependency cycle. The AST is
	// retained, the edges are not.
	ErrCodeCycle ErrorCode = 2

	// ErrCodeDiv0 - division by zero, or AVERAGE over zero numerics.
	ErrCodeDiv0 ErrorCode = 3

	// ErrCodeName - unknown function name.
	ErrCodeName ErrorCode = 4

	// ErrCodeValue - operand of the wrong shape for an operator or function.
	ErrCodeValue ErrorCode = 5

	// ErrCodeNum - arithmetic produced a non-finite result.
	ErrCodeNum ErrorCode = 6
)

// errorText maps error codes to their display sentinels
var errorText = map[ErrorCode]string{
	ErrCodeRef:   "#REF!",
	ErrCodeCycle: "#CYCLE!",
	ErrCodeDiv0:  "#DIV0!",
	ErrCodeName:  "#NAME!",
	ErrCodeValue: "#VALUE!",
	ErrCodeNum:   "#NUM!",
}

// CellError is an error sentinel stored in a cell in place of a number
type CellError struct {
	Code ErrorCode
}

func (e *CellError) Error() string {
	return errorText[e.Code]
}

func (e *CellError) String() string {
	return errorText[e.Code]
}

// NewCellError creates an error sentinel for the given code
func NewCellError(code ErrorCode) *CellError {
	return &CellError{Code: code}
}

// IsCellError reports whether v is an error sentinel, optionally matching a
// specific code. With no codes given it matches any sentinel.
func IsCellError(v Scalar, codes ...ErrorCode) bool {
	ce, ok := v.(*CellError)
	if !ok {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

// Application-level errors returned by helpers such as address parsing and
// the script runner. The engine's own mutating operations never return them.
var (
	// ErrBadAddress indicates an A1-style address that does not parse.
	ErrBadAddress = errors.New("gridcalc: malformed cell address")
	// ErrBadScript indicates a script line the runner does not understand.
	ErrBadScript = errors.New("gridcalc: malformed script statement")
)

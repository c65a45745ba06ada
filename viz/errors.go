package viz

import "fmt"

// AxisTypeError reports an axis bound to a column whose type the chart kind
// cannot plot.
type AxisTypeError struct {
	Axis   string // "x" or "y"
	Column string
	Actual string
}

func (e *AxisTypeError) Error() string {
	return fmt.Sprintf("%s axis column %q is %s, expected numeric", e.Axis, e.Column, e.Actual)
}

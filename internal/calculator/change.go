package calculator

import "errors"

// Change returns the absolute and percentage difference of current against previous.
func Change(current, previous float64) (diff, pct float64, err error) {
	diff = current - previous
	if previous == 0 {
		return diff, 0, errors.New("previous value is zero")
	}
	return diff, diff / previous * 100, nil
}

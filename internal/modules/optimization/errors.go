package optimization

import (
	"errors"
	"fmt"
)

// ErrDegenerateVolatility is returned when a portfolio's volatility is
// exactly zero and the Sharpe ratio is undefined. It is surfaced
// explicitly instead of letting an infinite or NaN ratio propagate.
var ErrDegenerateVolatility = errors.New("portfolio volatility is zero: Sharpe ratio undefined")

// InsufficientDataError is returned when fewer than two usable periods
// remain after rows with missing observations are dropped; the sample
// covariance is undefined below that.
type InsufficientDataError struct {
	Periods int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient return history: %d usable periods, need at least 2", e.Periods)
}

// OptimizationFailedError is returned when the constrained solver does not
// converge. The last iterate is discarded rather than reported as optimal.
type OptimizationFailedError struct {
	Status string
	Err    error
}

func (e *OptimizationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("optimization did not converge: %v (status=%s)", e.Err, e.Status)
	}
	return fmt.Sprintf("optimization did not converge: status=%s", e.Status)
}

func (e *OptimizationFailedError) Unwrap() error { return e.Err }

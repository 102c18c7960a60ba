// Package forecast defines the pluggable extrapolation capability: given
// historical (x, y) pairs, produce forecasted future values. The contract
// is deterministic output for identical history, and a minimum of two
// samples; the model behind it is an implementation choice.
package forecast

import (
	"errors"
	"fmt"
)

// Sample is one historical observation.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InsufficientDataError reports too little history to fit a model.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("extrapolation needs at least %d samples, got %d", e.Need, e.Got)
}

// Extrapolator produces `horizon` future y values from history.
// Implementations must be deterministic for identical history and
// configuration, and must return InsufficientDataError when fewer than two
// samples are supplied.
type Extrapolator interface {
	FitAndPredict(history []Sample, horizon int) ([]float64, error)
	Name() string
}

// checkArgs enforces the shared contract preconditions.
func checkArgs(history []Sample, horizon int) error {
	if horizon <= 0 {
		return errors.New("horizon must be positive")
	}
	if len(history) < 2 {
		return &InsufficientDataError{Need: 2, Got: len(history)}
	}
	return nil
}

// step returns the x spacing used to place forecast points: the mean
// spacing of the history, falling back to 1 when the history does not
// advance in x.
func step(history []Sample) float64 {
	first, last := history[0].X, history[len(history)-1].X
	dx := (last - first) / float64(len(history)-1)
	if dx <= 0 {
		return 1
	}
	return dx
}

// LastValue is the trivial flat-line extrapolator: every forecast point
// repeats the final observed y.
type LastValue struct{}

func (LastValue) Name() string { return "lastvalue" }

func (LastValue) FitAndPredict(history []Sample, horizon int) ([]float64, error) {
	if err := checkArgs(history, horizon); err != nil {
		return nil, err
	}
	last := history[len(history)-1].Y
	out := make([]float64, horizon)
	for i := range out {
		out[i] = last
	}
	return out, nil
}

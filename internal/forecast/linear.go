package forecast

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Linear extrapolates along the least-squares regression line fitted to
// the history.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) FitAndPredict(history []Sample, horizon int) ([]float64, error) {
	if err := checkArgs(history, horizon); err != nil {
		return nil, err
	}

	coords := make(stats.Series, len(history))
	for i, s := range history {
		coords[i] = stats.Coordinate{X: s.X, Y: s.Y}
	}
	fitted, err := stats.LinearRegression(coords)
	if err != nil {
		return nil, fmt.Errorf("linear regression: %w", err)
	}

	// Recover slope and intercept from the fitted line's endpoints.
	first, last := fitted[0], fitted[len(fitted)-1]
	var slope float64
	if dx := last.X - first.X; dx != 0 {
		slope = (last.Y - first.Y) / dx
	}
	intercept := last.Y - slope*last.X

	dx := step(history)
	out := make([]float64, horizon)
	for i := range out {
		x := last.X + float64(i+1)*dx
		out[i] = slope*x + intercept
	}
	return out, nil
}

package model

import (
	"math"
	"time"
)

const (
	// Elo step size on the 0..1 importance scale
	eloK = 0.1
	// eloScale spreads the 0..1 score range over the logistic curve
	eloScale = 4.0
)

// InitialImportance assigns the starting importance of a new todo. Overdue and
// today's todos start high; others get a randomized mid-range score that is
// never exactly 0.5 so the first comparison always moves it. rnd must return a
// value in [0, 1).
func InitialImportance(deadline *Date, now time.Time, rnd func() float64) float64 {
	r := rnd()
	if deadline != nil {
		today := DateOf(now)
		switch {
		case !deadline.After(today):
			return round4(0.75 + r*0.2)
		case *deadline == today.AddDays(1):
			return round4(0.6 + r*0.1)
		}
	}

	score := round4(0.3 + r*0.35)
	if score == 0.5 {
		score = 0.51
	}
	return score
}

// EloUpdate returns new importance scores after the user picked winner over
// loser. Both scores stay within [0, 1].
func EloUpdate(winner, loser float64) (float64, float64) {
	expected := 1 / (1 + math.Pow(10, (loser-winner)*eloScale))
	delta := eloK * (1 - expected)
	return round4(clamp01(winner + delta)), round4(clamp01(loser - delta))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestInitialImportance(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	today := model.DateOf(now)
	yesterday := today.AddDays(-1)
	tomorrow := today.AddDays(1)
	nextWeek := today.AddDays(7)

	t.Run("today starts high", func(t *testing.T) {
		score := model.InitialImportance(&today, now, fixedRand(0))
		gt.Value(t, score).Equal(0.75)
	})

	t.Run("overdue starts high", func(t *testing.T) {
		score := model.InitialImportance(&yesterday, now, fixedRand(0.5))
		gt.Value(t, score).Equal(0.85)
	})

	t.Run("tomorrow is above mid range", func(t *testing.T) {
		score := model.InitialImportance(&tomorrow, now, fixedRand(0.5))
		gt.Value(t, score).Equal(0.65)
	})

	t.Run("no deadline is mid range", func(t *testing.T) {
		for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			score := model.InitialImportance(nil, now, fixedRand(r))
			gt.B(t, score >= 0.3 && score < 0.65).True()
		}
		score := model.InitialImportance(&nextWeek, now, fixedRand(0))
		gt.Value(t, score).Equal(0.3)
	})

	t.Run("never exactly the midpoint", func(t *testing.T) {
		// 0.3 + r*0.35 == 0.5
		score := model.InitialImportance(nil, now, fixedRand(0.2/0.35))
		gt.Value(t, score).NotEqual(0.5)
	})
}

func TestEloUpdate(t *testing.T) {
	t.Run("equal scores move symmetrically", func(t *testing.T) {
		w, l := model.EloUpdate(0.5, 0.5)
		gt.Value(t, w).Equal(0.55)
		gt.Value(t, l).Equal(0.45)
	})

	t.Run("upset moves more than expected win", func(t *testing.T) {
		upsetW, _ := model.EloUpdate(0.2, 0.8)
		expectedW, _ := model.EloUpdate(0.8, 0.2)
		gt.B(t, upsetW-0.2 > expectedW-0.8).True()
	})

	t.Run("scores stay within bounds", func(t *testing.T) {
		w, l := model.EloUpdate(1, 0)
		gt.B(t, w <= 1).True()
		gt.B(t, l >= 0).True()

		w, l = model.EloUpdate(0.99, 0.01)
		gt.B(t, w <= 1).True()
		gt.B(t, l >= 0).True()
	})
}

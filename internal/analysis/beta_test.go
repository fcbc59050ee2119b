package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/convlab/internal/panel"
)

func mustPanel(t *testing.T, obs []panel.Observation) *panel.Panel {
	t.Helper()
	p, err := panel.New(obs)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func linearObs(areas map[string][2]float64, years int) []panel.Observation {
	var obs []panel.Observation
	for area, ab := range areas {
		for y := 1; y <= years; y++ {
			obs = append(obs, panel.Observation{Area: area, Year: y, Value: ab[0] + ab[1]*float64(y-1)})
		}
	}
	return obs
}

func TestGrowthPoints(t *testing.T) {
	p := mustPanel(t, linearObs(map[string][2]float64{
		"A": {50, 1},
		"B": {100, 0},
	}, 11))

	points := GrowthPoints(p)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}

	a := points[0]
	if a.Area != "A" || a.Initial != 50 || a.Terminal != 60 {
		t.Errorf("unexpected point: %+v", a)
	}
	if math.Abs(a.Growth-(60.0/50.0)/10) > 1e-12 {
		t.Errorf("growth = %v, want %v", a.Growth, 0.12)
	}
	if points[1].Growth != 0.1 {
		t.Errorf("flat area growth = %v, want 0.1", points[1].Growth)
	}
}

func TestGrowthPoints_LateEntrantHorizon(t *testing.T) {
	obs := linearObs(map[string][2]float64{"A": {60, 1}}, 20)
	for y := 1; y <= 20; y++ {
		v := math.NaN()
		if y >= 6 {
			v = 40 + float64(y-6)
		}
		obs = append(obs, panel.Observation{Area: "L", Year: y, Value: v})
	}
	points := GrowthPoints(mustPanel(t, obs))

	var late GrowthPoint
	for _, pt := range points {
		if pt.Area == "L" {
			late = pt
		}
	}
	if late.FirstYear != 6 || late.LastYear != 20 {
		t.Fatalf("late entrant span = %d..%d, want 6..20", late.FirstYear, late.LastYear)
	}
	if late.Initial != 40 {
		t.Errorf("late entrant initial = %v, want 40", late.Initial)
	}
	if math.Abs(late.Growth-(54.0/40.0)/14) > 1e-12 {
		t.Errorf("late entrant growth = %v, want %v", late.Growth, (54.0/40.0)/14)
	}
}

func TestGrowthPoints_SkipsSingleObservation(t *testing.T) {
	obs := []panel.Observation{
		{Area: "A", Year: 1, Value: 10},
		{Area: "A", Year: 2, Value: 11},
		{Area: "B", Year: 1, Value: math.NaN()},
		{Area: "B", Year: 2, Value: 9},
	}
	points := GrowthPoints(mustPanel(t, obs))
	if len(points) != 1 || points[0].Area != "A" {
		t.Errorf("expected only A, got %+v", points)
	}
}

func TestBeta_TwoAreas(t *testing.T) {
	p := mustPanel(t, linearObs(map[string][2]float64{
		"A": {70, 0.1},
		"B": {75, 0.2},
	}, 20))

	_, err := Beta(GrowthPoints(p), 0.05)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected insufficient data, got %v", err)
	}
}

func TestBeta_IdenticalInitialValues(t *testing.T) {
	p := mustPanel(t, linearObs(map[string][2]float64{
		"A": {70, 0.1},
		"B": {70, 0.2},
		"C": {70, 0.3},
	}, 20))

	_, err := Beta(GrowthPoints(p), 0.05)
	if !errors.Is(err, ErrDegeneratePredictor) {
		t.Errorf("expected degenerate predictor, got %v", err)
	}
}

func TestBeta_NegatedGrowth(t *testing.T) {
	p := mustPanel(t, linearObs(map[string][2]float64{
		"A": {70, 0.4},
		"B": {72, 0.35},
		"C": {74, 0.25},
		"D": {76, 0.2},
		"E": {78, 0.1},
	}, 20))

	points := GrowthPoints(p)
	pos, err := Beta(points, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	for i := range points {
		points[i].Growth = -points[i].Growth
	}
	neg, err := Beta(points, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	if pos.Slope >= 0 || neg.Slope != -pos.Slope {
		t.Errorf("slopes: %v, %v", pos.Slope, neg.Slope)
	}
	if math.Abs(math.Abs(pos.TStat)-math.Abs(neg.TStat)) > 1e-12 || math.Abs(pos.PValue-neg.PValue) > 1e-12 {
		t.Errorf("|t| or p changed: %+v vs %+v", pos, neg)
	}
}

package panel

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func grid(areas []string, years int, value func(a, y int) float64) []Observation {
	var obs []Observation
	for a, area := range areas {
		for y := 1; y <= years; y++ {
			obs = append(obs, Observation{Area: area, Year: y, Value: value(a, y)})
		}
	}
	return obs
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		obs    []Observation
		opts   []Option
		target error
	}{
		{"missing area and year", []Observation{{Value: 1}}, nil, ErrMalformedObservation},
		{"missing area", []Observation{{Year: 3, Value: 1}}, nil, ErrMalformedObservation},
		{"year zero", []Observation{{Area: "A", Year: 0, Value: 1}}, nil, ErrMalformedObservation},
		{"year above range", []Observation{{Area: "A", Year: 21, Value: 1}}, []Option{WithYearRange(1, 20)}, ErrMalformedObservation},
		{"infinite value", []Observation{{Area: "A", Year: 1, Value: math.Inf(1)}}, nil, ErrMalformedObservation},
		{"duplicate", []Observation{{Area: "A", Year: 1, Value: 1}, {Area: "A", Year: 1, Value: 2}}, nil, ErrDuplicateObservation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.obs, tt.opts...)
			if !errors.Is(err, tt.target) {
				t.Fatalf("New() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestNew_MalformedErrorCarriesIndex(t *testing.T) {
	obs := []Observation{
		{Area: "A", Year: 1, Value: 1},
		{Area: "", Year: 0, Value: 2},
	}
	_, err := New(obs)

	var me *MalformedError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MalformedError, got %T", err)
	}
	if me.Index != 1 {
		t.Errorf("expected index 1, got %d", me.Index)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	obs := grid([]string{"A", "B"}, 3, func(a, y int) float64 { return float64(10*a + y) })
	p, err := New(obs)
	if err != nil {
		t.Fatal(err)
	}

	obs[0].Value = -999

	ob, ok := p.Lookup("A", 1)
	if !ok || ob.Value != 1 {
		t.Errorf("panel changed with caller slice: %+v", ob)
	}
}

func TestDeriveBaselines_NoMissing(t *testing.T) {
	obs := grid([]string{"A", "B", "C"}, 5, func(a, y int) float64 { return float64(a*100 + y) })
	p, _ := New(obs)
	d := p.DeriveBaselines()

	if p.HasBaselines() {
		t.Error("source panel must stay underived")
	}
	if !d.HasBaselines() {
		t.Error("derived panel should report baselines")
	}

	for _, area := range d.Areas() {
		first, _ := d.Lookup(area, 1)
		for _, ob := range d.Series(area) {
			if ob.Initial != first.Value {
				t.Errorf("area %s year %d: initial %f, want %f", area, ob.Year, ob.Initial, first.Value)
			}
		}
	}
}

func TestDeriveBaselines_LateEntry(t *testing.T) {
	obs := grid([]string{"A", "B"}, 6, func(a, y int) float64 {
		if a == 1 && y <= 3 {
			return math.NaN()
		}
		return float64(a*100 + y)
	})
	p, _ := New(obs)
	d := p.DeriveBaselines()

	for _, ob := range d.Series("B") {
		if ob.Initial != 104 {
			t.Errorf("year %d: initial %f, want value at year 4 (104)", ob.Year, ob.Initial)
		}
	}
	for _, ob := range d.Series("A") {
		if ob.Initial != 1 {
			t.Errorf("year %d: initial %f, want 1", ob.Year, ob.Initial)
		}
	}
}

func TestDeriveBaselines_AllMissing(t *testing.T) {
	obs := []Observation{
		{Area: "A", Year: 1, Value: math.NaN()},
		{Area: "A", Year: 2, Value: math.NaN()},
		{Area: "B", Year: 1, Value: 3},
	}
	p, _ := New(obs)
	d := p.DeriveBaselines()

	ob, _ := d.Lookup("A", 2)
	if !math.IsNaN(ob.Initial) {
		t.Errorf("expected NaN baseline for all-missing area, got %f", ob.Initial)
	}
}

func TestCrossSection_ExcludesMissing(t *testing.T) {
	obs := grid([]string{"A", "B", "C"}, 2, func(a, y int) float64 {
		if a == 2 && y == 1 {
			return math.NaN()
		}
		return float64(a + 1)
	})
	p, _ := New(obs)

	if got := p.CrossSection(1); len(got) != 2 {
		t.Errorf("year 1: expected 2 values, got %v", got)
	}
	if got := p.CrossSection(2); len(got) != 3 {
		t.Errorf("year 2: expected 3 values, got %v", got)
	}
	if got := p.CrossSection(9); len(got) != 0 {
		t.Errorf("unknown year: expected empty, got %v", got)
	}
}

func TestAreasAndYearsSorted(t *testing.T) {
	obs := []Observation{
		{Area: "C", Year: 3, Value: 1},
		{Area: "A", Year: 1, Value: 1},
		{Area: "B", Year: 2, Value: 1},
	}
	p, _ := New(obs)

	areas := p.Areas()
	if strings.Join(areas, ",") != "A,B,C" {
		t.Errorf("areas = %v", areas)
	}
	years := p.Years()
	if len(years) != 3 || years[0] != 1 || years[2] != 3 {
		t.Errorf("years = %v", years)
	}
}

func TestReadCSV(t *testing.T) {
	in := "area,year,value\nA,1,70.5\nA,2,71\nB,1,NA\nB,2,68.25\n"
	p, err := ReadCSV(strings.NewReader(in), WithYearRange(1, 20))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if p.Len() != 4 {
		t.Errorf("expected 4 observations, got %d", p.Len())
	}
	ob, _ := p.Lookup("B", 1)
	if !ob.Missing() {
		t.Errorf("expected B/1 missing, got %f", ob.Value)
	}
	ob, _ = p.Lookup("B", 2)
	if ob.Value != 68.25 {
		t.Errorf("expected 68.25, got %f", ob.Value)
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad year", "area,year,value\nA,x,1\n"},
		{"no area", "area,year,value\n,2,1\n"},
		{"out of range", "area,year,value\nA,40,1\n"},
		{"bad value", "area,year,value\nA,1,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), WithYearRange(1, 20))
			if !errors.Is(err, ErrMalformedObservation) {
				t.Errorf("expected malformed observation, got %v", err)
			}
		})
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("area,value\nA,1\n"))
	if err == nil {
		t.Fatal("expected error for missing year column")
	}
}

func TestWriteCSV(t *testing.T) {
	obs := grid([]string{"A", "B"}, 2, func(a, y int) float64 { return float64(a + y) })
	obs[1].Value = math.NaN()
	p, _ := New(obs)

	var buf bytes.Buffer
	if err := p.WriteCSV(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	ob, _ := back.Lookup("A", 2)
	if !ob.Missing() {
		t.Errorf("missing value lost in csv: %f", ob.Value)
	}
}

func TestWriteCSV_Lossless(t *testing.T) {
	want := map[string]float64{"A": 1.23456789012e-7, "B": 2.5e-7, "C": 75.123456789}
	var obs []Observation
	for area, v := range want {
		obs = append(obs, Observation{Area: area, Year: 1, Value: v})
	}
	p, err := New(obs)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.WriteCSV(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}

	for area, v := range want {
		ob, ok := back.Lookup(area, 1)
		if !ok || ob.Value != v {
			t.Errorf("%s: expected %v, got %v", area, v, ob.Value)
		}
	}
}

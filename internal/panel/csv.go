package panel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	colArea  = "area"
	colYear  = "year"
	colValue = "value"
)

// ReadCSV loads a panel from a CSV with header area,year,value. Empty, NA and
// NaN values are missing; rows with an unparseable year are malformed.
func ReadCSV(r io.Reader, opts ...Option) (*Panel, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("panel: read csv: %w", df.Err)
	}

	cols := make(map[string]bool)
	for _, name := range df.Names() {
		cols[name] = true
	}
	for _, want := range []string{colArea, colYear, colValue} {
		if !cols[want] {
			return nil, fmt.Errorf("panel: read csv: missing column %q", want)
		}
	}

	areas := df.Col(colArea).Records()
	years := df.Col(colYear).Records()
	values := df.Col(colValue).Records()

	obs := make([]Observation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		ob := Observation{Area: strings.TrimSpace(areas[i])}
		if ob.Area == "NaN" {
			ob.Area = ""
		}
		v, err := parseValue(values[i])
		if err != nil {
			return nil, &MalformedError{Index: i, Observation: ob, Reason: err.Error()}
		}
		ob.Value = v
		if ys := strings.TrimSpace(years[i]); ys != "" && ys != "NaN" {
			y, err := strconv.Atoi(ys)
			if err != nil {
				return nil, &MalformedError{Index: i, Observation: ob, Reason: fmt.Sprintf("year %q is not an integer", ys)}
			}
			ob.Year = y
		}
		obs = append(obs, ob)
	}

	return New(obs, opts...)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "NA", "NAN":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", s)
	}
	return v, nil
}

// formatValue uses the shortest representation that parses back to v.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the panel as area,year,value in (year, area) order.
// Values round-trip through ReadCSV exactly.
func (p *Panel) WriteCSV(w io.Writer) error {
	areas := make([]string, len(p.obs))
	years := make([]int, len(p.obs))
	values := make([]string, len(p.obs))
	for i, ob := range p.obs {
		areas[i] = ob.Area
		years[i] = ob.Year
		values[i] = formatValue(ob.Value)
	}

	df := dataframe.New(
		series.New(areas, series.String, colArea),
		series.New(years, series.Int, colYear),
		series.New(values, series.String, colValue),
	)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

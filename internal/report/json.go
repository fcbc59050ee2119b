package report

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/convlab/internal/analysis"
)

// JSON mirrors analysis.Report with errors as strings and non-finite numbers
// as null.
type JSON struct {
	Scenario        string       `json:"scenario"`
	Seed            int64        `json:"seed"`
	Significance    float64      `json:"significance"`
	StdDev          string       `json:"stddev"`
	Beta            jsonFit      `json:"beta"`
	Trends          []jsonTrend  `json:"trends"`
	Series          []jsonPoint  `json:"series"`
	Growth          []jsonGrowth `json:"growth"`
	DegenerateYears []int        `json:"degenerate_years"`
}

type jsonFit struct {
	Slope          *float64 `json:"slope"`
	Intercept      *float64 `json:"intercept"`
	StdErr         *float64 `json:"stderr"`
	TStat          *float64 `json:"t_stat"`
	PValue         *float64 `json:"p_value"`
	N              int      `json:"n"`
	Classification string   `json:"classification,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type jsonTrend struct {
	Index string `json:"index"`
	jsonFit
}

type jsonPoint struct {
	Year       int      `json:"year"`
	EffectiveN int      `json:"effective_n"`
	Gini       *float64 `json:"gini"`
	Range      *float64 `json:"range"`
	CoV        *float64 `json:"cov"`
	Variance   *float64 `json:"variance"`
	Error      string   `json:"error,omitempty"`
}

type jsonGrowth struct {
	Area      string   `json:"area"`
	FirstYear int      `json:"first_year"`
	LastYear  int      `json:"last_year"`
	Initial   *float64 `json:"initial"`
	Terminal  *float64 `json:"terminal"`
	Growth    *float64 `json:"growth"`
}

func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fit(r analysis.Regression, err error) jsonFit {
	if err != nil {
		return jsonFit{Error: err.Error()}
	}
	return jsonFit{
		Slope:          num(r.Slope),
		Intercept:      num(r.Intercept),
		StdErr:         num(r.StdErr),
		TStat:          num(r.TStat),
		PValue:         num(r.PValue),
		N:              r.N,
		Classification: r.Class.String(),
	}
}

// ToJSON converts e into its exported form.
func ToJSON(e Entry) JSON {
	rep := e.Report
	out := JSON{
		Scenario:        e.Name,
		Seed:            e.Seed,
		Significance:    rep.Config.Significance,
		StdDev:          rep.Config.StdDev.String(),
		Beta:            fit(rep.Beta, rep.BetaErr),
		Trends:          make([]jsonTrend, 0, len(rep.Trends)),
		Series:          make([]jsonPoint, 0, len(rep.Series)),
		Growth:          make([]jsonGrowth, 0, len(rep.Growth)),
		DegenerateYears: rep.DegenerateYears(),
	}
	if out.DegenerateYears == nil {
		out.DegenerateYears = []int{}
	}

	for _, tr := range rep.Trends {
		out.Trends = append(out.Trends, jsonTrend{Index: string(tr.Index), jsonFit: fit(tr.Regression, tr.Err)})
	}
	for _, pt := range rep.Series {
		jp := jsonPoint{
			Year:       pt.Year,
			EffectiveN: pt.EffectiveN,
			Gini:       num(pt.Gini),
			Range:      num(pt.Range),
			CoV:        num(pt.CoV),
			Variance:   num(pt.Variance),
		}
		if pt.Err != nil {
			jp.Error = pt.Err.Error()
		}
		out.Series = append(out.Series, jp)
	}
	for _, gp := range rep.Growth {
		out.Growth = append(out.Growth, jsonGrowth{
			Area:      gp.Area,
			FirstYear: gp.FirstYear,
			LastYear:  gp.LastYear,
			Initial:   num(gp.Initial),
			Terminal:  num(gp.Terminal),
			Growth:    num(gp.Growth),
		})
	}
	return out
}

// WriteJSON writes the indented JSON form of every entry as an array.
func WriteJSON(w io.Writer, entries []Entry) error {
	out := make([]JSON, len(entries))
	for i, e := range entries {
		out[i] = ToJSON(e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/panel"
)

// Entry is one analyzed scenario.
type Entry struct {
	Name        string
	Description string
	Seed        int64
	Panel       *panel.Panel
	Report      *analysis.Report
}

func short(c analysis.Classification) string {
	switch c {
	case analysis.Convergence:
		return "conv"
	case analysis.Divergence:
		return "div"
	}
	return "-"
}

// Summary writes one row per entry with the beta verdict and the sigma
// verdict of every index.
func Summary(w io.Writer, entries []Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "SCENARIO\tBETA\tBETA_P")
	for _, idx := range analysis.Indices() {
		fmt.Fprintf(tw, "\t%s", strings.ToUpper(string(idx)))
	}
	fmt.Fprintln(tw)

	for _, e := range entries {
		rep := e.Report
		if rep.BetaErr != nil {
			fmt.Fprintf(tw, "%s\terr\t-", e.Name)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s", e.Name, short(rep.Beta.Class), formatP(rep.Beta.PValue))
		}
		for _, idx := range analysis.Indices() {
			tr, ok := rep.Trend(idx)
			switch {
			case !ok:
				fmt.Fprint(tw, "\t")
			case tr.Err != nil:
				fmt.Fprint(tw, "\terr")
			default:
				fmt.Fprintf(tw, "\t%s", short(tr.Class))
			}
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

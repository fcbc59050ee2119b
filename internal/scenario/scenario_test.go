package scenario_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/scenario"
)

var _ = Describe("Scenarios", func() {
	var (
		reg      *scenario.Registry
		analyzer *analysis.Analyzer
	)

	BeforeEach(func() {
		reg = scenario.NewRegistry()
		var err error
		analyzer, err = analysis.New(analysis.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	analyze := func(name string, params scenario.Params) *analysis.Report {
		p, err := reg.Generate(name, params, 1)
		Expect(err).NotTo(HaveOccurred())
		rep, err := analyzer.Analyze(p)
		Expect(err).NotTo(HaveOccurred())
		return rep
	}

	trend := func(rep *analysis.Report, idx analysis.Index) analysis.TrendResult {
		tr, ok := rep.Trend(idx)
		Expect(ok).To(BeTrue())
		Expect(tr.Err).NotTo(HaveOccurred())
		return tr
	}

	Describe("registry", func() {
		It("lists ten scenarios in a stable order", func() {
			names := reg.Names()
			Expect(names).To(HaveLen(10))
			Expect(names[0]).To(Equal("stability"))
			Expect(reg.List()[3].Name).To(Equal("good_get_better"))
		})

		It("rejects unknown names", func() {
			_, err := reg.Get("no_such_thing")
			Expect(err).To(MatchError(ContainSubstring("unknown scenario")))
		})

		It("rejects invalid params", func() {
			params := scenario.DefaultParams()
			params.Areas = 2
			_, err := reg.Generate("stability", params, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("reproducibility", func() {
		It("yields the same panel for the same seed", func() {
			a, err := reg.Generate("regression_to_mean", scenario.DefaultParams(), 99)
			Expect(err).NotTo(HaveOccurred())
			b, err := reg.Generate("regression_to_mean", scenario.DefaultParams(), 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Len()).To(Equal(a.Len()))
			for _, year := range a.Years() {
				Expect(b.CrossSection(year)).To(Equal(a.CrossSection(year)), "year %d", year)
			}
		})

		It("yields a different panel for another seed", func() {
			a, _ := reg.Generate("regression_to_mean", scenario.DefaultParams(), 1)
			b, _ := reg.Generate("regression_to_mean", scenario.DefaultParams(), 2)
			Expect(b.CrossSection(1)).NotTo(Equal(a.CrossSection(1)))
		})
	})

	Describe("every scenario", func() {
		It("produces a full analyzable panel with default params", func() {
			for _, s := range reg.List() {
				rep := analyze(s.Name, scenario.DefaultParams())
				Expect(rep.BetaErr).NotTo(HaveOccurred(), s.Name)
				Expect(rep.Series).To(HaveLen(scenario.DefaultYears), s.Name)
				Expect(rep.DegenerateYears()).To(BeEmpty(), s.Name)
			}
		})
	})

	Describe("stability", func() {
		It("shows neither beta nor sigma movement", func() {
			rep := analyze("stability", scenario.DefaultParams().Noiseless())

			Expect(rep.Beta.Class).To(Equal(analysis.None))
			Expect(rep.Beta.PValue).To(BeNumerically(">=", 0.05))
			for _, idx := range analysis.Indices() {
				tr := trend(rep, idx)
				Expect(tr.Class).To(Equal(analysis.None), string(idx))
			}
		})
	})

	Describe("good_get_better", func() {
		It("shows beta-divergence and sigma-divergence", func() {
			rep := analyze("good_get_better", scenario.DefaultParams().Noiseless())

			Expect(rep.Beta.Slope).To(BeNumerically(">", 0))
			Expect(rep.Beta.Class).To(Equal(analysis.Divergence))
			Expect(trend(rep, analysis.IndexGini).Class).To(Equal(analysis.Divergence))
			Expect(trend(rep, analysis.IndexCoV).Class).To(Equal(analysis.Divergence))
		})
	})

	Describe("laggards_catch_up", func() {
		It("shows beta-convergence and sigma-convergence", func() {
			rep := analyze("laggards_catch_up", scenario.DefaultParams().Noiseless())

			Expect(rep.Beta.Slope).To(BeNumerically("<", 0))
			Expect(rep.Beta.Class).To(Equal(analysis.Convergence))
			Expect(trend(rep, analysis.IndexGini).Class).To(Equal(analysis.Convergence))
		})
	})

	Describe("rank_reversal", func() {
		It("pairs beta-convergence with sigma-divergence", func() {
			rep := analyze("rank_reversal", scenario.DefaultParams().Noiseless())

			Expect(rep.Beta.Class).To(Equal(analysis.Convergence))
			Expect(trend(rep, analysis.IndexGini).Class).To(Equal(analysis.Divergence))
		})
	})

	Describe("late_entrants", func() {
		It("reports the shrunken cross-section before entry", func() {
			rep := analyze("late_entrants", scenario.DefaultParams())

			for _, pt := range rep.Series {
				if pt.Year < scenario.DefaultEntryYear {
					Expect(pt.EffectiveN).To(Equal(7), "year %d", pt.Year)
				} else {
					Expect(pt.EffectiveN).To(Equal(10), "year %d", pt.Year)
				}
			}
		})

		It("measures entrant growth from their entry year", func() {
			rep := analyze("late_entrants", scenario.DefaultParams())

			entrants := 0
			for _, gp := range rep.Growth {
				if gp.FirstYear == scenario.DefaultEntryYear {
					entrants++
					Expect(gp.LastYear).To(Equal(scenario.DefaultYears))
				}
			}
			Expect(entrants).To(Equal(scenario.DefaultGroup))
		})
	})

	Describe("proportional_growth", func() {
		It("keeps relative dispersion while absolute dispersion grows", func() {
			rep := analyze("proportional_growth", scenario.DefaultParams().Noiseless())

			first, last := rep.Series[0], rep.Series[len(rep.Series)-1]
			Expect(math.Abs(last.CoV - first.CoV)).To(BeNumerically("<", 1e-9))
			Expect(last.Range).To(BeNumerically(">", first.Range))
		})
	})
})

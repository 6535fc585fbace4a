// Package plot renders attack data as go-echarts HTML pages.
package plot

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"seasign-bias/attack"
	"seasign-bias/sweep"
)

// Implied holds the bounds on s[i] implied by the informative samples of
// one coordinate. Lower comes from draws near the top of the window
// (e[i]-δB > -B), Upper from draws near the bottom (e[i]+δB < B). Every
// other draw is consistent with the whole [-B,B] range.
type Implied struct {
	Lower []int64
	Upper []int64
}

// InformativeSamples extracts the implied bounds for coordinate coord.
func InformativeSamples(batch []attack.Vector, params attack.Params, coord int) (Implied, error) {
	if coord < 0 || coord >= params.N {
		return Implied{}, fmt.Errorf("%w: coordinate %d outside [0,%d)", attack.ErrInvalidInput, coord, params.N)
	}
	w := params.AcceptBound()
	var out Implied
	for j, e := range batch {
		if len(e) != params.N {
			return Implied{}, fmt.Errorf("%w: sample %d has length %d, want %d", attack.ErrInvalidInput, j, len(e), params.N)
		}
		if v := e[coord] - w; v > -params.B {
			out.Lower = append(out.Lower, v)
		}
		if v := e[coord] + w; v < params.B {
			out.Upper = append(out.Upper, v)
		}
	}
	return out, nil
}

// counts bins values over [-bound, bound]; anything outside is dropped.
func counts(values []int64, bound int64) []opts.BarData {
	bins := make([]int, 2*bound+1)
	for _, v := range values {
		if v < -bound || v > bound {
			continue
		}
		bins[v+bound]++
	}
	out := make([]opts.BarData, len(bins))
	for i, c := range bins {
		out[i] = opts.BarData{Value: c}
	}
	return out
}

// SampleHistogram draws the implied-bound frequencies of one coordinate with
// a mark line at the true secret value.
func SampleHistogram(batch []attack.Vector, secret attack.Vector, params attack.Params, coord int) (*charts.Bar, error) {
	if err := params.CheckSecret(secret); err != nil {
		return nil, err
	}
	imp, err := InformativeSamples(batch, params, coord)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, 2*params.B+1)
	for v := -params.B; v <= params.B; v++ {
		labels = append(labels, strconv.FormatInt(v, 10))
	}

	subtitle := fmt.Sprintf("%d samples, %d lower / %d upper informative", len(batch), len(imp.Lower), len(imp.Upper))
	if g, err := attack.Recover(batch, params); err == nil {
		subtitle += fmt.Sprintf(", recovered %s", g[coord])
	}
	title := fmt.Sprintf("coordinate %d (secret %d)", coord, secret[coord])

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "implied bound on s[i]"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "frequency"}),
	)
	bar.SetXAxis(labels).
		AddSeries("lower bounds (e-δB)", counts(imp.Lower, params.B),
			charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
				Name:  "secret",
				XAxis: strconv.FormatInt(secret[coord], 10),
			}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Label:     &opts.Label{Show: opts.Bool(true)},
				LineStyle: &opts.LineStyle{Type: "dashed", Width: 1},
			}),
		).
		AddSeries("upper bounds (e+δB)", counts(imp.Upper, params.B))
	return bar, nil
}

// SampleHistogramPage renders one histogram per requested coordinate.
func SampleHistogramPage(batch []attack.Vector, secret attack.Vector, params attack.Params, coords []int) (*components.Page, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", attack.ErrInvalidInput)
	}
	page := components.NewPage().SetPageTitle(fmt.Sprintf("Informative samples, %s", params))
	for _, c := range coords {
		bar, err := SampleHistogram(batch, secret, params, c)
		if err != nil {
			return nil, err
		}
		page.AddCharts(bar)
	}
	return page, nil
}

// EntropyChart plots residual entropy against the number of known
// signatures. NaN points (all trials inconsistent) are left as gaps.
func EntropyChart(rows []sweep.Row, title string) *charts.Line {
	x := make([]string, len(rows))
	mean := make([]opts.LineData, len(rows))
	lo := make([]opts.LineData, len(rows))
	hi := make([]opts.LineData, len(rows))
	point := func(v float64) opts.LineData {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return opts.LineData{Value: "-"}
		}
		return opts.LineData{Value: v}
	}
	for i, r := range rows {
		x[i] = strconv.Itoa(r.KnownSigs)
		mean[i] = point(r.MeanBits)
		lo[i] = point(r.MinBits)
		hi[i] = point(r.MaxBits)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "known signatures"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "residual entropy (bits)"}),
	)
	line.SetXAxis(x).
		AddSeries("mean", mean).
		AddSeries("min", lo).
		AddSeries("max", hi)
	return line
}

// RenderPage writes page as HTML.
func RenderPage(w io.Writer, page *components.Page) error {
	if page == nil {
		return fmt.Errorf("nil page")
	}
	return page.Render(w)
}

/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package charts

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Render draws spec as a standalone go-echarts HTML document. id becomes the
// DOM id of the chart container.
func Render(id string, spec Spec) (string, error) {
	initOpts := charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   "100%",
		Height:  "360px",
	})
	titleOpts := charts.WithTitleOpts(opts.Title{
		Title: spec.DisplayTitle(),
	})
	tooltipOpts := charts.WithTooltipOpts(opts.Tooltip{
		Show: opts.Bool(true),
	})
	legendOpts := charts.WithLegendOpts(opts.Legend{
		Show: opts.Bool(len(spec.Series) > 1),
	})

	var yAxisMax interface{}
	if spec.Max > 0 {
		yAxisMax = spec.Max
	}

	var buf bytes.Buffer

	switch spec.Kind {
	case KindLine:
		line := charts.NewLine()
		line.SetGlobalOptions(initOpts, titleOpts, tooltipOpts, legendOpts,
			charts.WithYAxisOpts(opts.YAxis{
				Name: spec.Unit,
				Min:  0,
				Max:  yAxisMax,
			}),
		)

		line.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			line.AddSeries(s.Name, lineData(s.Values))
		}

		line.SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(true),
			}),
		)

		if err := line.Render(&buf); err != nil {
			return "", fmt.Errorf("failed to render %s chart: %w", spec.Title, err)
		}

	case KindBar, KindHorizontalBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(initOpts, titleOpts, tooltipOpts, legendOpts,
			charts.WithYAxisOpts(opts.YAxis{
				Name: spec.Unit,
				Max:  yAxisMax,
			}),
		)

		bar.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			bar.AddSeries(s.Name, barData(s.Values))
		}

		if spec.Kind == KindHorizontalBar {
			bar.XYReversal()
		}

		if err := bar.Render(&buf); err != nil {
			return "", fmt.Errorf("failed to render %s chart: %w", spec.Title, err)
		}

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}

	return buf.String(), nil
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}

	return out
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v}
	}

	return out
}

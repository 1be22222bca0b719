package stats

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type PlotPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// BuildAveragePlot averages the lists position by position. Lists may have
// different lengths; a position is averaged over the lists that reach it.
func BuildAveragePlot(lists [][]float64, startIndex, step int) []PlotPoint {
	if step <= 0 {
		step = 1
	}
	longest := 0
	for _, list := range lists {
		if len(list) > longest {
			longest = len(list)
		}
	}
	points := make([]PlotPoint, 0, longest)
	for pos := 0; pos < longest; pos++ {
		sum, count := 0.0, 0
		for _, list := range lists {
			if pos < len(list) {
				sum += list[pos]
				count++
			}
		}
		points = append(points, PlotPoint{Index: startIndex + pos*step, Value: sum / float64(count)})
	}
	return points
}

// FitnessSeries is one named line of a fitness plot.
type FitnessSeries struct {
	Name    string
	History []float64
}

// WriteFitnessPlot renders the series, plus their average when there is more
// than one, to path. The image format follows the file extension.
func WriteFitnessPlot(path, title string, series []FitnessSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("no fitness series to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	lists := make([][]float64, 0, len(series))
	for i, s := range series {
		if len(s.History) == 0 {
			return fmt.Errorf("series %s has no fitness values", s.Name)
		}
		line, err := plotter.NewLine(historyXYs(s.History))
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1)
		if i > 0 {
			line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
		lists = append(lists, s.History)
	}
	if len(series) > 1 {
		avg := BuildAveragePlot(lists, 1, 1)
		xys := make(plotter.XYs, len(avg))
		for i, point := range avg {
			xys[i].X = float64(point.Index)
			xys[i].Y = point.Value
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("average series: %w", err)
		}
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("average", line)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func historyXYs(history []float64) plotter.XYs {
	xys := make(plotter.XYs, len(history))
	for i, v := range history {
		xys[i].X = float64(i + 1)
		xys[i].Y = v
	}
	return xys
}

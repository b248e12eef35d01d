// Package charts renders expense aggregates as images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"expensekeeper/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// RenderCategoryPie draws a PNG pie chart of the per-category totals.
func RenderCategoryPie(totals []core.CategoryAmount) ([]byte, error) {
	var sum float64
	for _, c := range totals {
		sum += c.Amount.InexactFloat64()
	}
	if len(totals) == 0 || sum <= 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(totals))
	for _, c := range totals {
		amount := c.Amount.InexactFloat64()
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", c.Name, c.Amount.Display(), amount/sum*100),
			Value: amount,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Expenses by category",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

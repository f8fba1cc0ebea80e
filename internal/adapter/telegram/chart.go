package telegram

import (
	"bytes"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

// renderFunnelChart draws the funnel as a PNG bar chart.
func renderFunnelChart(labels []string, values []int) ([]byte, error) {
	if len(labels) != len(values) {
		return nil, errors.Errorf("funnel chart: %d labels for %d values", len(labels), len(values))
	}
	bars := make([]chart.Value, 0, len(labels))
	maxVal := 0
	for i, label := range labels {
		if values[i] > maxVal {
			maxVal = values[i]
		}
		bars = append(bars, chart.Value{Value: float64(values[i]), Label: label})
	}
	// an all-zero funnel still needs a non-empty range
	yMax := float64(maxVal)
	if yMax <= 0 {
		yMax = 1
	}
	graph := chart.BarChart{
		Width:    1100,
		Height:   600,
		BarWidth: 56,
		Background: chart.Style{Padding: chart.Box{
			Top:   50,
			Left:  16,
			Right: 16,
		}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: yMax}},
		Bars:  bars,
	}
	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, errors.Wrap(err, "render funnel chart")
	}
	return buf.Bytes(), nil
}

func (h *Handler) sendFunnelChart(chatID int64, labels []string, values []int) error {
	png, err := renderFunnelChart(labels, values)
	if err != nil {
		return err
	}
	name := "funnel_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".png"
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: png})
	photo.Caption = h.funnel.Chart()
	_, err = h.bot.Send(photo)
	return errors.Wrap(err, "send funnel chart")
}

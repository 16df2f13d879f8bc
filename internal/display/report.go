// Package display renders a pipeline snapshot as a styled terminal report.
package display

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"MayerSentinel/internal/model"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/strategy"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	buyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	sellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	holdStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func signalStyle(sig model.Signal) lipgloss.Style {
	switch sig {
	case model.SignalBuy:
		return buyStyle
	case model.SignalSell:
		return sellStyle
	default:
		return holdStyle
	}
}

// Render writes the recommendation, metric deltas and trade table.
func Render(w io.Writer, asset string, snap *pipeline.Snapshot, days int) error {
	latest, ok := snap.Latest()
	if !ok {
		return errors.New("snapshot has no rows")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s Trading Dashboard", asset)) + "\n")
	b.WriteString(dimStyle.Render(snap.Message) + "\n\n")

	rec := strings.ToUpper(string(latest.Signal))
	summary := []string{
		"Recommendation: " + signalStyle(latest.Signal).Render(rec),
		fmt.Sprintf("Date:           %s", latest.Date.Format("2006-01-02")),
		fmt.Sprintf("Close:          %.2f", latest.Close),
		fmt.Sprintf("Mayer Multiple: %.4f (band %.4f .. %.4f)", latest.Multiple, latest.LowerQuantile, latest.UpperQuantile),
	}
	if latest.Score != nil {
		summary = append(summary, fmt.Sprintf("Fear and Greed: %d (%s)", *latest.Score, strategy.ClassifySentiment(*latest.Score)))
	} else {
		summary = append(summary, "Fear and Greed: n/a")
	}
	b.WriteString(boxStyle.Render(strings.Join(summary, "\n")) + "\n")

	deltas, err := snap.Deltas(days)
	if err != nil {
		b.WriteString(warnStyle.Render(err.Error()) + "\n")
	} else {
		lines := make([]string, 0, len(deltas))
		for _, d := range deltas {
			if !d.Available {
				lines = append(lines, fmt.Sprintf("%-26s n/a", d.Label))
				continue
			}
			lines = append(lines, fmt.Sprintf("%-26s %12.2f  %+.2f (%+.2f%%)", d.Label, d.Current, d.Difference, d.Percent))
		}
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")) + "\n")
	}

	if len(snap.Trades) == 0 {
		b.WriteString(warnStyle.Render(snap.TradesMessage) + "\n")
	} else {
		lines := []string{fmt.Sprintf("%-10s  %-4s  %12s  %8s", "Date", "Sig", "Close", "Multiple")}
		for _, ev := range snap.Trades {
			sig := signalStyle(ev.Signal).Render(fmt.Sprintf("%-4s", ev.Signal))
			lines = append(lines, fmt.Sprintf("%-10s  %s  %12.2f  %8.4f",
				ev.Date.Format("2006-01-02"), sig, ev.Close, ev.Multiple))
		}
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")) + "\n")
	}

	_, err = io.WriteString(w, b.String())
	return err
}

package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"MayerSentinel/internal/model"
)

// AssetName derives the display name from a ticker such as "BTC-USD".
func AssetName(symbol string) string {
	name, _, _ := strings.Cut(symbol, "-")
	return name
}

// FormatSignalMessage formats the latest row as the Telegram trading signal.
func FormatSignalMessage(asset string, row model.MergedRow, currency string, now time.Time) string {
	score := "n/a"
	if row.Score != nil {
		score = fmt.Sprintf("%d", *row.Score)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Trading Dashboard on %s:\n", asset, now.Format("02.01.2006 15:04:05")))
	b.WriteString(fmt.Sprintf("Signal: <b>%s</b>\n", strings.ToUpper(string(row.Signal))))
	b.WriteString(fmt.Sprintf("Price: <b>%.0f</b> %s\n", math.Round(row.Close), currency))
	b.WriteString(fmt.Sprintf("Fear and Greed Index: <b>%s</b>", score))
	return b.String()
}

package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"TrendSentry/internal/model"
)

// FormatSignalReport formats a classification report into a message.
func FormatSignalReport(report model.Report, latest model.PricePoint) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", report.Symbol, report.Time.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Last close: %s (volume %s)\n\n",
		humanize.CommafWithDigits(latest.Close, 2), humanize.Commaf(latest.Volume)))

	for _, sig := range []model.Signal{report.Trend, report.Volatility, report.Momentum} {
		b.WriteString(formatSignal(sig))
	}
	return b.String()
}

func formatSignal(sig model.Signal) string {
	if !sig.Defined {
		return fmt.Sprintf("%s: <b>%s</b> (%s)\n", sig.Kind, sig.Label, sig.Explanation)
	}
	return fmt.Sprintf("%s: <b>%s</b> | %s\n", sig.Kind, sig.Label, sig.Explanation)
}

// FormatAlertEvent formats a triggered alert.
func FormatAlertEvent(rule model.AlertRule, event model.AlertEvent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Alert triggered: %s</b>\n\n", rule.Symbol))
	b.WriteString(fmt.Sprintf("Current price: %s (target: %s %s)\n",
		humanize.CommafWithDigits(event.TriggeredPrice, 2),
		directionWord(rule.Direction),
		humanize.CommafWithDigits(rule.Threshold, 2)))
	b.WriteString(fmt.Sprintf("Rule %s | %s\n", rule.ID, event.Time.Format("2006-01-02 15:04:05")))
	return b.String()
}

// FormatActiveAlerts lists alert rules for display.
func FormatActiveAlerts(rules []model.AlertRule) string {
	if len(rules) == 0 {
		return "No active alerts."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Alerts</b>\n\n")
	for i, r := range rules {
		b.WriteString(fmt.Sprintf("%d. %s %s %s | %s (id %s)\n",
			i+1, r.Symbol, directionWord(r.Direction),
			humanize.CommafWithDigits(r.Threshold, 2), r.Status, r.ID))
	}
	return b.String()
}

// FormatForecast formats extrapolated future values.
func FormatForecast(symbol, method string, predictions []float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔮 <b>%s forecast</b> (%s, next %d bars)\n\n", symbol, method, len(predictions)))
	for i, y := range predictions {
		b.WriteString(fmt.Sprintf("t+%d: %s\n", i+1, humanize.CommafWithDigits(y, 2)))
	}
	return b.String()
}

func directionWord(d model.Direction) string {
	if d == model.Below {
		return "below"
	}
	return "above"
}

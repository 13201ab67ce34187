package telegram

import (
	"fmt"
	"time"
)

// FormatErrorAlertMessage formats an error alert for the operator chat.
func FormatErrorAlertMessage(t time.Time, message string) string {
	return fmt.Sprintf("🚨 *Analysis Alert*\n\n%s\n\n_%s_", message, t.Format("2006-01-02 15:04:05"))
}

// FormatAnalysisCompleteMessage formats a completion notice for a
// single-subject analysis.
func FormatAnalysisCompleteMessage(t time.Time, symbol, recommendation string, comprehensive float64) string {
	return fmt.Sprintf("📈 *%s* analysis complete\n\nScore: *%.1f*/100\nRecommendation: *%s*\n\n_%s_",
		symbol, comprehensive, recommendation, t.Format("2006-01-02 15:04:05"))
}

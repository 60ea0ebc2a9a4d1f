package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/model"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, res *model.AnalysisResult, historyID string) {
	fmt.Fprintf(w, "%s  %.1f%%  %s\n", strings.ToUpper(string(res.Status)), res.Confidence, res.Title)
	fmt.Fprintln(w, res.Description)

	if len(res.Metadata) > 0 {
		fmt.Fprintln(w, "\nDetails:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, m := range res.Metadata {
			fmt.Fprintf(tw, "  %s\t%s\n", m.Label, m.Value)
		}
		tw.Flush()
	}
	if len(res.RiskFactors) > 0 {
		fmt.Fprintln(w, "\nRisk factors:")
		for _, f := range res.RiskFactors {
			fmt.Fprintf(w, "  [%s] %s\n", f.Severity, f.Description)
		}
	}
	if len(res.DetailedAnalysis) > 0 {
		fmt.Fprintln(w, "\nFindings:")
		for _, d := range res.DetailedAnalysis {
			if d.Timestamp != "" {
				fmt.Fprintf(w, "  %s  %s (%d%%): %s\n", d.Timestamp, d.Label, d.Confidence, d.Description)
			} else {
				fmt.Fprintf(w, "  %s (%d%%): %s\n", d.Label, d.Confidence, d.Description)
			}
		}
	}
	if historyID != "" {
		fmt.Fprintf(w, "\nSaved to history as %s\n", historyID)
	}
}

func renderHistory(w io.Writer, items []*model.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "History is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tCONFIDENCE\tWHEN\tINPUT")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
			it.ID, it.Kind, it.Result.Status, it.Result.Confidence,
			it.Timestamp.Local().Format("2006-01-02 15:04"), oneLine(it.Input, 60))
	}
	tw.Flush()
}

func renderComparison(w io.Writer, c *history.Comparison) {
	fmt.Fprintf(w, "%s -> %s\n", c.BaseID, c.HeadID)
	fmt.Fprintf(w, "%s (confidence %+.1f)\n", c.Summary, c.ConfidenceDelta)
	for _, ch := range c.Chunks {
		prefix := "+ "
		if ch.Type == "removed" {
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimRight(ch.Content, "\n"), "\n") {
			fmt.Fprintln(w, prefix+line)
		}
	}
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

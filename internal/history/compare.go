package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/vexora/internal/model"
)

// Chunk is one changed run of report lines.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Comparison describes how a later scan differs from an earlier one.
type Comparison struct {
	BaseID          string       `json:"base_id"`
	HeadID          string       `json:"head_id"`
	BaseStatus      model.Status `json:"base_status"`
	HeadStatus      model.Status `json:"head_status"`
	ConfidenceDelta float64      `json:"confidence_delta"`
	Summary         string       `json:"summary"`
	Chunks          []Chunk      `json:"chunks"`
}

// Changed reports whether the two reports differ at all.
func (c *Comparison) Changed() bool {
	return len(c.Chunks) > 0
}

// Compare loads two items and diffs their reports line by line.
func (s *Store) Compare(ctx context.Context, baseID, headID string) (*Comparison, error) {
	base, err := s.Get(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("base %s: %w", baseID, err)
	}
	head, err := s.Get(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", headID, err)
	}
	return CompareItems(base, head), nil
}

// CompareItems diffs two already loaded items.
func CompareItems(base, head *model.HistoryItem) *Comparison {
	c := &Comparison{
		BaseID:          base.ID,
		HeadID:          head.ID,
		BaseStatus:      base.Result.Status,
		HeadStatus:      head.Result.Status,
		ConfidenceDelta: head.Result.Confidence - base.Result.Confidence,
		Chunks:          diffLines(Report(base), Report(head)),
	}
	switch {
	case c.BaseStatus != c.HeadStatus:
		c.Summary = fmt.Sprintf("status changed from %s to %s", c.BaseStatus, c.HeadStatus)
	case !c.Changed():
		c.Summary = "no changes"
	default:
		c.Summary = fmt.Sprintf("status unchanged (%s), %d section(s) differ", c.HeadStatus, len(c.Chunks))
	}
	return c
}

func diffLines(base, head string) []Chunk {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(base, head)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	chunks := make([]Chunk, 0)
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, Chunk{Type: kind, Content: d.Text})
		}
	}
	return chunks
}

// Report renders an item as plain text, one fact per line, in a stable order
// so that two reports diff cleanly.
func Report(item *model.HistoryItem) string {
	r := item.Result
	var b strings.Builder
	fmt.Fprintf(&b, "type: %s\n", item.Kind)
	fmt.Fprintf(&b, "input: %s\n", item.Input)
	fmt.Fprintf(&b, "status: %s\n", r.Status)
	fmt.Fprintf(&b, "confidence: %s\n", strconv.FormatFloat(r.Confidence, 'f', 1, 64))
	fmt.Fprintf(&b, "title: %s\n", r.Title)
	fmt.Fprintf(&b, "description: %s\n", r.Description)
	for _, m := range r.Metadata {
		fmt.Fprintf(&b, "meta %s: %s\n", m.Label, m.Value)
	}
	for _, f := range r.RiskFactors {
		fmt.Fprintf(&b, "risk [%s] %s\n", f.Severity, f.Description)
	}
	for _, d := range r.DetailedAnalysis {
		if d.Timestamp != "" {
			fmt.Fprintf(&b, "finding %s %s (%d%%): %s\n", d.Timestamp, d.Label, d.Confidence, d.Description)
		} else {
			fmt.Fprintf(&b, "finding %s (%d%%): %s\n", d.Label, d.Confidence, d.Description)
		}
	}
	return b.String()
}

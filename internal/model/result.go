package model

import "time"

// Status is the discrete verdict of an analysis.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Severity buckets a RiskFactor.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Kind names the input modality an analysis was run on.
type Kind string

const (
	KindURL   Kind = "url"
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the known modalities.
func (k Kind) Valid() bool {
	switch k {
	case KindURL, KindText, KindImage, KindVideo:
		return true
	}
	return false
}

// MetadataItem is one labelled row of an AnalysisResult. Order is significant.
type MetadataItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RiskFactor explains one triggered rule.
type RiskFactor struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// DetailedAnalysis is a fine-grained finding attached to image and video results.
// Timestamp is empty for image findings.
type DetailedAnalysis struct {
	Timestamp   string `json:"timestamp,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Confidence  int    `json:"confidence"`
}

// AnalysisResult is the output contract of every pipeline.
//
//	{
//	  "status": "warning",
//	  "confidence": 74.2,
//	  "title": "Suspicious URL Detected",
//	  "description": "Some concerning patterns were found. Proceed with caution.",
//	  "metadata": [{"label": "domain", "value": "paypa1-login.top"}],
//	  "riskFactors": [{"severity": "high", "description": "URL mimics a known trusted brand (potential phishing)"}]
//	}
type AnalysisResult struct {
	Status           Status             `json:"status"`
	Confidence       float64            `json:"confidence"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Metadata         []MetadataItem     `json:"metadata"`
	RiskFactors      []RiskFactor       `json:"riskFactors"`
	DetailedAnalysis []DetailedAnalysis `json:"detailedAnalysis,omitempty"`
}

// Meta returns the value of the first metadata row with the given label.
func (r *AnalysisResult) Meta(label string) (string, bool) {
	for _, m := range r.Metadata {
		if m.Label == label {
			return m.Value, true
		}
	}
	return "", false
}

// HistoryItem is one persisted analysis.
type HistoryItem struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"type"`
	Input     string          `json:"input"`
	Result    *AnalysisResult `json:"result"`
	Timestamp time.Time       `json:"timestamp"`
}

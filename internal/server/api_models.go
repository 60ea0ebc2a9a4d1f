package server

import (
	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/model"
)

// AnalyzeURLRequest carries a URL or bare host to score.
type AnalyzeURLRequest struct {
	URL string `json:"url" example:"http://paypa1-secure.xyz/login"`
}

// AnalyzeTextRequest carries a message body. Format "html" extracts the
// visible text and link targets first.
type AnalyzeTextRequest struct {
	Text   string `json:"text" example:"URGENT: your account will be suspended, verify at http://bit.ly/x"`
	Format string `json:"format,omitempty" example:"plain"`
}

// AnalysisResponse is an analysis result plus the id it was saved under.
type AnalysisResponse struct {
	*model.AnalysisResult
	HistoryID string `json:"history_id,omitempty" example:"3f0c2a4e-6a55-4c1e-8d8e-0b1a7f3b9f10"`
}

// StartBatchJobRequest lists the URL and text inputs of a batch job.
type StartBatchJobRequest struct {
	Items []app.BatchItem `json:"items"`
	Save  *bool           `json:"save,omitempty" example:"true"`
}

// ClearHistoryResponse confirms a history wipe.
type ClearHistoryResponse struct {
	Cleared bool `json:"cleared" example:"true"`
}

// HealthResponse reports liveness and the active policy version.
type HealthResponse struct {
	Status        string `json:"status" example:"ok"`
	PolicyVersion string `json:"policy_version" example:"2024.1"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

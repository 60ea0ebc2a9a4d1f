package analyzer

import (
	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/model"
)

// verdict is the title and description shown for one status.
type verdict struct {
	title       string
	description string
}

// verdicts holds a pipeline's fixed wording. clean is the low-severity factor
// added to a safe result that fired nothing.
type verdicts struct {
	safe    verdict
	warning verdict
	danger  verdict
	clean   string
}

func (v verdicts) forStatus(s model.Status) verdict {
	switch s {
	case model.StatusDanger:
		return v.danger
	case model.StatusWarning:
		return v.warning
	default:
		return v.safe
	}
}

// build classifies the accumulated score and assembles the result.
func build(th assessor.Thresholds, words verdicts, acc *assessor.Accumulator, metadata []model.MetadataItem, details []model.DetailedAnalysis) *model.AnalysisResult {
	status, confidence := th.Classify(acc.Score())
	factors := acc.Factors()
	if status == model.StatusSafe && len(factors) == 0 {
		factors = []model.RiskFactor{{Severity: model.SeverityLow, Description: words.clean}}
	}
	if factors == nil {
		factors = []model.RiskFactor{}
	}
	v := words.forStatus(status)
	return &model.AnalysisResult{
		Status:           status,
		Confidence:       confidence,
		Title:            v.title,
		Description:      v.description,
		Metadata:         metadata,
		RiskFactors:      factors,
		DetailedAnalysis: details,
	}
}

// fixed builds a result whose status and confidence do not come from a score.
func fixed(status model.Status, confidence float64, v verdict, metadata []model.MetadataItem, factors ...model.RiskFactor) *model.AnalysisResult {
	return &model.AnalysisResult{
		Status:      status,
		Confidence:  confidence,
		Title:       v.title,
		Description: v.description,
		Metadata:    metadata,
		RiskFactors: factors,
	}
}

func item(label, value string) model.MetadataItem {
	return model.MetadataItem{Label: label, Value: value}
}

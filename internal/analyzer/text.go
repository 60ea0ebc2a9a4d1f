package analyzer

import (
	"regexp"
	"strings"

	"github.com/raysh454/vexora/internal/assessor"
	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/policy"
	"github.com/raysh454/vexora/internal/utils"
)

// linkPattern stops a link at any Unicode space separator, not only ASCII
// whitespace, so a pasted no-break space ends the link.
var linkPattern = regexp.MustCompile(`(?i)https?://[^\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]+`)

// Classification is the binary text verdict.
type Classification string

const (
	ClassificationScam Classification = "SCAM"
	ClassificationReal Classification = "REAL"
)

// ConfidenceLevel grades a text verdict.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// Percent maps a level to the reported confidence.
func (c ConfidenceLevel) Percent() float64 {
	switch c {
	case ConfidenceHigh:
		return 95
	case ConfidenceMedium:
		return 75
	default:
		return 50
	}
}

const (
	scamThreshold     = 0.3
	highScamThreshold = 0.6
)

func (a *DefaultAnalyzer) analyzeText(pol *policy.Policy, text string) *model.AnalysisResult {
	acc := a.scorer.NewAccumulator()
	var md []model.MetadataItem
	var reasons []string

	links := linkPattern.FindAllString(text, -1)
	unofficial := false
	for _, link := range links {
		host, err := utils.HostOf(link)
		if err != nil {
			unofficial = true
			acc.FireSilently(assessor.RuleTextMalformedLink)
			reasons = append(reasons, "Contains malformed URL")
			continue
		}
		if pol.IsSafeDomain(host) && !pol.IsShortener(host) {
			md = append(md, item("Trusted Link", host))
			continue
		}
		unofficial = true
		acc.FireWith(assessor.RuleTextUnofficialLink, "Unofficial link detected: "+host)
		reasons = append(reasons, "Contains suspicious or unofficial link")
	}

	patterns := pol.TextPatterns()
	urgent := patterns.Urgency.MatchString(text)
	if urgent {
		acc.Fire(assessor.RuleTextUrgency)
		reasons = append(reasons, "Uses urgent or threatening tone")
	}
	reward := patterns.Reward.MatchString(text)
	if reward {
		acc.Fire(assessor.RuleTextReward)
		reasons = append(reasons, "Promises unauthorized rewards or gifts")
	}
	if patterns.Sensitive.MatchString(text) {
		acc.Fire(assessor.RuleTextSensitive)
		reasons = append(reasons, "Requests sensitive information (OTP/Password)")
	}
	if patterns.Suspension.MatchString(text) {
		acc.Fire(assessor.RuleTextSuspension)
		reasons = append(reasons, "Threatens account suspension")
	}

	score := acc.Score()
	class := ClassificationReal
	level := ConfidenceHigh
	var description string
	if score > scamThreshold || (unofficial && (urgent || reward)) {
		class = ClassificationScam
		if score <= highScamThreshold {
			level = ConfidenceMedium
		}
		description = "Matches general scam patterns."
		if len(reasons) > 0 {
			description = strings.Join(reasons, ". ")
		}
	} else {
		if pol.Text.SymmetricConfidence && score > 0 {
			level = ConfidenceMedium
		}
		description = "Normal conversation pattern detected."
		if len(links) > 0 && !unofficial {
			description = "Uses official trusted domain and normal tone."
		}
	}

	md = append(md,
		item("classification", string(class)),
		item("confidence", string(level)),
	)

	status := model.StatusSafe
	if class == ClassificationScam {
		status = model.StatusDanger
	}
	factors := acc.Factors()
	if len(factors) == 0 {
		if class == ClassificationReal {
			factors = []model.RiskFactor{{Severity: model.SeverityLow, Description: "No scam indicators detected"}}
		} else {
			factors = []model.RiskFactor{}
		}
	}

	return &model.AnalysisResult{
		Status:      status,
		Confidence:  level.Percent(),
		Title:       "Classification: " + string(class),
		Description: description,
		Metadata:    md,
		RiskFactors: factors,
	}
}

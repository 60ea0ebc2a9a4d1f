package assessor

import "github.com/raysh454/vexora/internal/model"

// RuleID names one rule in a pipeline's rule set.
type RuleID string

const (
	// URL pipeline
	RuleURLUnreachable        RuleID = "url_unreachable"
	RuleURLInsecureScheme     RuleID = "url_insecure_scheme"
	RuleURLBrandImpersonation RuleID = "url_brand_impersonation"
	RuleURLPhishingKeyword    RuleID = "url_phishing_keyword"
	RuleURLIPHost             RuleID = "url_ip_host"
	RuleURLExcessSubdomains   RuleID = "url_excess_subdomains"
	RuleURLSuspiciousTLD      RuleID = "url_suspicious_tld"
	RuleURLShortenerLookalike RuleID = "url_shortener_lookalike"
	RuleURLTyposquat          RuleID = "url_typosquat"
	RuleURLVisualSimilarity   RuleID = "url_visual_similarity"
	RuleURLNumberSubstitution RuleID = "url_number_substitution"
	RuleURLLong               RuleID = "url_long"

	// Text pipeline
	RuleTextUnofficialLink RuleID = "text_unofficial_link"
	RuleTextMalformedLink  RuleID = "text_malformed_link"
	RuleTextUrgency        RuleID = "text_urgency"
	RuleTextReward         RuleID = "text_reward"
	RuleTextSensitive      RuleID = "text_sensitive"
	RuleTextSuspension     RuleID = "text_suspension"

	// Image pipeline
	RuleImageAIGenerated       RuleID = "image_ai_generated"
	RuleImageExtensionMismatch RuleID = "image_extension_mismatch"
	RuleImageFaceInconsistency RuleID = "image_face_inconsistency"
	RuleImageArtifacts         RuleID = "image_artifacts"
	RuleImageMissingEXIF       RuleID = "image_missing_exif"

	// Video pipeline
	RuleVideoDeepfake          RuleID = "video_deepfake"
	RuleVideoLipSync           RuleID = "video_lip_sync"
	RuleVideoFaceInconsistency RuleID = "video_face_inconsistency"
	RuleVideoBlink             RuleID = "video_blink"
	RuleVideoVoice             RuleID = "video_voice"
	RuleVideoTemporal          RuleID = "video_temporal"
)

// RuleWeights maps rules to their score contribution. Graded rules
// (image_ai_generated, video_deepfake) contribute the simulated score itself
// and carry no fixed weight.
var RuleWeights = map[RuleID]float64{
	RuleURLUnreachable:        0.8,
	RuleURLInsecureScheme:     0.25,
	RuleURLBrandImpersonation: 0.45,
	RuleURLPhishingKeyword:    0.15,
	RuleURLIPHost:             0.35,
	RuleURLExcessSubdomains:   0.15,
	RuleURLSuspiciousTLD:      0.2,
	RuleURLShortenerLookalike: 0.4,
	RuleURLTyposquat:          0.35,
	RuleURLVisualSimilarity:   0.3,
	RuleURLNumberSubstitution: 0.15,
	RuleURLLong:               0.1,

	RuleTextUnofficialLink: 0.4,
	RuleTextMalformedLink:  0.3,
	RuleTextUrgency:        0.3,
	RuleTextReward:         0.35,
	RuleTextSensitive:      0.5,
	RuleTextSuspension:     0.4,

	RuleImageExtensionMismatch: 0.2,
	RuleImageFaceInconsistency: 0.2,
	RuleImageArtifacts:         0.15,
	RuleImageMissingEXIF:       0.1,

	RuleVideoLipSync:           0.2,
	RuleVideoFaceInconsistency: 0.2,
	RuleVideoBlink:             0.15,
	RuleVideoVoice:             0.15,
	RuleVideoTemporal:          0.1,
}

// SeverityForRule returns the severity bucket of a rule's risk factor.
// Graded rules pick their severity at evaluation time.
func SeverityForRule(id RuleID) model.Severity {
	switch id {
	case RuleURLUnreachable,
		RuleURLInsecureScheme,
		RuleURLBrandImpersonation,
		RuleURLIPHost,
		RuleURLShortenerLookalike,
		RuleURLTyposquat,
		RuleTextUnofficialLink,
		RuleTextSensitive,
		RuleTextSuspension,
		RuleVideoLipSync:
		return model.SeverityHigh

	case RuleURLLong,
		RuleImageMissingEXIF,
		RuleVideoTemporal:
		return model.SeverityLow

	default:
		return model.SeverityMedium
	}
}

// DescribeRule returns the risk-factor text for rules with a fixed description.
func DescribeRule(id RuleID) string {
	switch id {
	case RuleURLUnreachable:
		return "Website appears unreachable or domain does not exist"
	case RuleURLInsecureScheme:
		return "Website does not use secure HTTPS connection"
	case RuleURLBrandImpersonation:
		return "URL mimics a known trusted brand (potential phishing)"
	case RuleURLIPHost:
		return "Uses IP address instead of domain name"
	case RuleURLExcessSubdomains:
		return "Unusually many subdomains detected"
	case RuleURLSuspiciousTLD:
		return "Uses suspicious top-level domain"
	case RuleURLNumberSubstitution:
		return "Domain contains suspicious number substitution"
	case RuleURLLong:
		return "URL is unusually long"

	case RuleTextUrgency:
		return "Creates artificial urgency"
	case RuleTextReward:
		return "Suspected reward bait"
	case RuleTextSensitive:
		return "Asks for private credentials"
	case RuleTextSuspension:
		return "Fake account alert"

	case RuleImageAIGenerated:
		return "Image shows signs of AI generation or manipulation"
	case RuleImageExtensionMismatch:
		return "File extension does not match actual file type"
	case RuleImageFaceInconsistency:
		return "Inconsistencies detected in facial features"
	case RuleImageArtifacts:
		return "Digital artifacts consistent with AI generation"
	case RuleImageMissingEXIF:
		return "Original EXIF metadata appears to be stripped"

	case RuleVideoDeepfake:
		return "Video shows characteristics of AI-generated content"
	case RuleVideoLipSync:
		return "Audio-visual synchronization anomalies detected"
	case RuleVideoFaceInconsistency:
		return "Facial features show inconsistency across frames"
	case RuleVideoBlink:
		return "Unnatural blinking patterns detected"
	case RuleVideoVoice:
		return "Voice synthesis artifacts detected in audio"
	case RuleVideoTemporal:
		return "Temporal inconsistencies between frames"

	default:
		return string(id)
	}
}

// Package policy holds the swappable detection data: allow-lists, keyword
// lists and pattern families consumed by the analyzers.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrEmptyPolicy   = errors.New("policy: document is empty")
	ErrInvalidPolicy = errors.New("policy: invalid")
)

// Policy is an immutable detection policy. Obtain one from Default, Load or
// Parse; those compile the patterns, so a zero Policy is not usable.
type Policy struct {
	Version string      `yaml:"version" json:"version"`
	URL     URLPolicy   `yaml:"url" json:"url"`
	Text    TextPolicy  `yaml:"text" json:"text"`
	Image   ImagePolicy `yaml:"image" json:"image"`

	brands []*regexp.Regexp
	text   TextPatterns
}

type URLPolicy struct {
	SafeDomains        []string `yaml:"safe_domains" json:"safe_domains"`
	TrustedSuffixes    []string `yaml:"trusted_suffixes" json:"trusted_suffixes"`
	GovernmentSuffixes []string `yaml:"government_suffixes" json:"government_suffixes"`
	BrandPatterns      []string `yaml:"brand_patterns" json:"brand_patterns"`
	PhishingKeywords   []string `yaml:"phishing_keywords" json:"phishing_keywords"`
	SuspiciousTLDs     []string `yaml:"suspicious_tlds" json:"suspicious_tlds"`
	TyposquatTargets   []string `yaml:"typosquat_targets" json:"typosquat_targets"`
	LongURLLength      int      `yaml:"long_url_length" json:"long_url_length"`
}

type TextPolicy struct {
	Shorteners          []string `yaml:"shorteners" json:"shorteners"`
	Urgency             string   `yaml:"urgency" json:"urgency"`
	Reward              string   `yaml:"reward" json:"reward"`
	Sensitive           string   `yaml:"sensitive" json:"sensitive"`
	Suspension          string   `yaml:"suspension" json:"suspension"`
	SymmetricConfidence bool     `yaml:"symmetric_confidence" json:"symmetric_confidence"`
}

type ImagePolicy struct {
	ExpectedMIME map[string]string `yaml:"expected_mime" json:"expected_mime"`
}

// TextPatterns are the compiled message pattern families.
type TextPatterns struct {
	Urgency    *regexp.Regexp
	Reward     *regexp.Regexp
	Sensitive  *regexp.Regexp
	Suspension *regexp.Regexp
}

// Default returns the built-in policy.
func Default() *Policy {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("policy: built-in default is invalid: %v", err))
	}
	return p
}

// Load reads a policy file. Sections missing from the file keep the built-in
// values.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load policy %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML document layered over the built-in policy and compiles it.
func Parse(data []byte) (*Policy, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyPolicy
	}
	var base Policy
	if err := yaml.Unmarshal(defaultYAML, &base); err != nil {
		return nil, fmt.Errorf("decode built-in policy: %w", err)
	}
	var doc Policy
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	merged := merge(base, doc)
	if err := merged.compile(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func merge(base, doc Policy) Policy {
	out := base
	if doc.Version != "" {
		out.Version = doc.Version
	}
	u := doc.URL
	if u.SafeDomains != nil {
		out.URL.SafeDomains = u.SafeDomains
	}
	if u.TrustedSuffixes != nil {
		out.URL.TrustedSuffixes = u.TrustedSuffixes
	}
	if u.GovernmentSuffixes != nil {
		out.URL.GovernmentSuffixes = u.GovernmentSuffixes
	}
	if u.BrandPatterns != nil {
		out.URL.BrandPatterns = u.BrandPatterns
	}
	if u.PhishingKeywords != nil {
		out.URL.PhishingKeywords = u.PhishingKeywords
	}
	if u.SuspiciousTLDs != nil {
		out.URL.SuspiciousTLDs = u.SuspiciousTLDs
	}
	if u.TyposquatTargets != nil {
		out.URL.TyposquatTargets = u.TyposquatTargets
	}
	if u.LongURLLength != 0 {
		out.URL.LongURLLength = u.LongURLLength
	}
	t := doc.Text
	if t.Shorteners != nil {
		out.Text.Shorteners = t.Shorteners
	}
	if t.Urgency != "" {
		out.Text.Urgency = t.Urgency
	}
	if t.Reward != "" {
		out.Text.Reward = t.Reward
	}
	if t.Sensitive != "" {
		out.Text.Sensitive = t.Sensitive
	}
	if t.Suspension != "" {
		out.Text.Suspension = t.Suspension
	}
	out.Text.SymmetricConfidence = t.SymmetricConfidence
	if doc.Image.ExpectedMIME != nil {
		out.Image.ExpectedMIME = doc.Image.ExpectedMIME
	}
	return out
}

// Validate checks the document and compiles every pattern.
func (p *Policy) Validate() error {
	return p.compile()
}

func (p *Policy) compile() error {
	if p.URL.LongURLLength <= 0 {
		return fmt.Errorf("%w: url.long_url_length must be positive", ErrInvalidPolicy)
	}
	p.URL.SafeDomains = lowerAll(p.URL.SafeDomains)
	p.URL.TrustedSuffixes = dotted(lowerAll(p.URL.TrustedSuffixes))
	p.URL.GovernmentSuffixes = dotted(lowerAll(p.URL.GovernmentSuffixes))
	p.URL.SuspiciousTLDs = dotted(lowerAll(p.URL.SuspiciousTLDs))
	p.URL.TyposquatTargets = lowerAll(p.URL.TyposquatTargets)
	p.URL.PhishingKeywords = lowerAll(p.URL.PhishingKeywords)
	p.Text.Shorteners = lowerAll(p.Text.Shorteners)
	for _, d := range p.URL.SafeDomains {
		if d == "" || strings.HasPrefix(d, ".") {
			return fmt.Errorf("%w: safe domain %q must be a bare host", ErrInvalidPolicy, d)
		}
	}

	brands := make([]*regexp.Regexp, 0, len(p.URL.BrandPatterns))
	for _, pat := range p.URL.BrandPatterns {
		re, err := compileFold(pat)
		if err != nil {
			return fmt.Errorf("%w: brand pattern %q: %v", ErrInvalidPolicy, pat, err)
		}
		brands = append(brands, re)
	}

	var tp TextPatterns
	families := []struct {
		name string
		src  string
		dst  **regexp.Regexp
	}{
		{"urgency", p.Text.Urgency, &tp.Urgency},
		{"reward", p.Text.Reward, &tp.Reward},
		{"sensitive", p.Text.Sensitive, &tp.Sensitive},
		{"suspension", p.Text.Suspension, &tp.Suspension},
	}
	for _, f := range families {
		if strings.TrimSpace(f.src) == "" {
			return fmt.Errorf("%w: text.%s pattern is empty", ErrInvalidPolicy, f.name)
		}
		re, err := compileFold(f.src)
		if err != nil {
			return fmt.Errorf("%w: text.%s: %v", ErrInvalidPolicy, f.name, err)
		}
		*f.dst = re
	}

	mimes := make(map[string]string, len(p.Image.ExpectedMIME))
	for ext, mt := range p.Image.ExpectedMIME {
		mimes[strings.TrimPrefix(strings.ToLower(ext), ".")] = strings.ToLower(mt)
	}
	p.Image.ExpectedMIME = mimes

	p.brands = brands
	p.text = tp
	return nil
}

func compileFold(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dotted makes every suffix start at a label boundary.
func dotted(in []string) []string {
	for i, s := range in {
		if !strings.HasPrefix(s, ".") {
			in[i] = "." + s
		}
	}
	return in
}

// BrandPatterns returns the compiled impersonation patterns in policy order.
func (p *Policy) BrandPatterns() []*regexp.Regexp { return p.brands }

// TextPatterns returns the compiled message pattern families.
func (p *Policy) TextPatterns() TextPatterns { return p.text }

// IsSafeDomain reports whether host is an allow-listed domain, a subdomain of
// one, or carries a trusted suffix.
func (p *Policy) IsSafeDomain(host string) bool {
	host = strings.ToLower(host)
	if hasDomain(host, p.URL.SafeDomains) {
		return true
	}
	return hasSuffix(host, p.URL.TrustedSuffixes)
}

// IsGovernment reports whether host ends in a government suffix.
func (p *Policy) IsGovernment(host string) bool {
	return hasSuffix(strings.ToLower(host), p.URL.GovernmentSuffixes)
}

// IsShortener reports whether host belongs to a link shortener.
func (p *Policy) IsShortener(host string) bool {
	return hasDomain(strings.ToLower(host), p.Text.Shorteners)
}

// HasSuspiciousTLD reports whether host ends in one of the suspicious TLDs.
func (p *Policy) HasSuspiciousTLD(host string) bool {
	return hasSuffix(strings.ToLower(host), p.URL.SuspiciousTLDs)
}

// ExpectedMIME returns the MIME type a file with extension ext should declare.
func (p *Policy) ExpectedMIME(ext string) (string, bool) {
	mt, ok := p.Image.ExpectedMIME[strings.TrimPrefix(strings.ToLower(ext), ".")]
	return mt, ok
}

func hasDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hasSuffix(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

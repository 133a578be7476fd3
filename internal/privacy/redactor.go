package privacy

import (
	"fmt"
	"regexp"
	"strings"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/config"
)

// Redactor replaces personal data in a question with placeholders so it is
// never sent to the model or the trials API.
type Redactor struct {
	filters []filter
	enabled bool
}

type filter struct {
	name    string
	pattern *regexp.Regexp
	prefix  string
}

// Phone numbers need separators so trial identifiers such as NCT01836679
// are left alone.
var defaultFilters = []struct {
	name    string
	pattern string
	prefix  string
}{
	{"email", `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "EMAIL"},
	{"card", `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, "CARD"},
	{"ssn", `\b\d{3}-\d{2}-\d{4}\b`, "SSN"},
	{"phone", `(?:\+\d{1,3}[-.\s])?\(?\b\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`, "PHONE"},
	{"ip", `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`, "IP"},
}

// NewRedactor creates a redactor from config.
func NewRedactor(cfg config.PrivacyConfig) *Redactor {
	r := &Redactor{enabled: cfg.Enabled}

	enableMap := map[string]bool{
		"email": cfg.FilterEmails,
		"phone": cfg.FilterPhones,
		"card":  cfg.FilterCards,
		"ip":    cfg.FilterIPs,
		"ssn":   cfg.FilterSSN,
	}
	for _, f := range defaultFilters {
		if enableMap[f.name] {
			r.filters = append(r.filters, filter{
				name:    f.name,
				pattern: regexp.MustCompile(f.pattern),
				prefix:  f.prefix,
			})
		}
	}
	return r
}

// Mapping remembers the placeholders of one redaction.
type Mapping struct {
	originals map[string]string // placeholder → original value
	order     []string
}

// Len returns the number of distinct values replaced.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Restore puts the original values back in place of their placeholders.
func (m *Mapping) Restore(text string) string {
	if m == nil {
		return text
	}
	for _, placeholder := range m.order {
		text = strings.ReplaceAll(text, placeholder, m.originals[placeholder])
	}
	return text
}

// RestoreSteps returns a copy of steps with the original values back in
// tool inputs, logs and observations.
func (m *Mapping) RestoreSteps(steps []agent.Step) []agent.Step {
	if steps == nil {
		return nil
	}
	out := make([]agent.Step, len(steps))
	for i, s := range steps {
		out[i] = agent.Step{
			Action: agent.Action{
				Tool:      s.Action.Tool,
				ToolInput: m.Restore(s.Action.ToolInput),
				Log:       m.Restore(s.Action.Log),
			},
			Observation: m.Restore(s.Observation),
		}
	}
	return out
}

// Redact replaces personal data in text. Each call gets its own Mapping, so
// concurrent runs never see each other's values.
func (r *Redactor) Redact(text string) (string, *Mapping) {
	m := &Mapping{originals: make(map[string]string)}
	if !r.enabled || len(r.filters) == 0 {
		return text, m
	}

	seen := make(map[string]string) // original → placeholder
	counter := make(map[string]int)
	for _, f := range r.filters {
		text = f.pattern.ReplaceAllStringFunc(text, func(match string) string {
			if placeholder, ok := seen[match]; ok {
				return placeholder
			}
			counter[f.prefix]++
			placeholder := fmt.Sprintf("[%s_%d]", f.prefix, counter[f.prefix])
			seen[match] = placeholder
			m.originals[placeholder] = match
			m.order = append(m.order, placeholder)
			return placeholder
		})
	}
	return text, m
}

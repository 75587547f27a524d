package classify

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	reasoningPattern  = regexp.MustCompile(`"reasoning":\s*"([^"]+)"`)
	confidencePattern = regexp.MustCompile(`"confidence":\s*([0-9.]+)`)
)

type rawDecision struct {
	Datasource string  `json:"datasource"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// parseDecision turns whatever text the model produced into a Decision.
// It tolerates clean JSON, JSON buried in prose, and free text that
// merely mentions a datasource token.
func parseDecision(content string) Decision {
	var raw rawDecision
	if err := json.Unmarshal([]byte(content), &raw); err == nil {
		return rawToDecision(raw)
	}

	if obj := extractFirstObject(content); obj != "" {
		if err := json.Unmarshal([]byte(obj), &raw); err == nil {
			return rawToDecision(raw)
		}
	}

	return sniffDecision(content)
}

func rawToDecision(raw rawDecision) Decision {
	d := Decision{
		Datasource: ParseDatasource(raw.Datasource),
		Reasoning:  raw.Reasoning,
		Confidence: raw.Confidence,
	}
	if d.Reasoning == "" {
		d.Reasoning = "Classification based on query content"
	}
	if d.Confidence == 0 {
		d.Confidence = 0.7
	}
	return d
}

// extractFirstObject returns the first balanced {...} block, ignoring
// braces inside string literals.
func extractFirstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// sniffDecision is the last-resort parse: look for datasource tokens in
// the raw text and pull reasoning/confidence out with regexps.
func sniffDecision(content string) Decision {
	lower := strings.ToLower(content)

	d := Decision{Datasource: DatasourceWeb}
	if strings.Contains(lower, datasourceLocalToken) {
		d.Datasource = DatasourceLocal
	} else if strings.Contains(lower, datasourceHybridToken) {
		d.Datasource = DatasourceHybrid
	}

	d.Reasoning = "Classification based on query content"
	if m := reasoningPattern.FindStringSubmatch(content); m != nil {
		d.Reasoning = m[1]
	}

	d.Confidence = 0.7
	if m := confidencePattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.Confidence = v
		}
	}

	return d
}

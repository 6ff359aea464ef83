package llm

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

var errNoJSONObject = errors.New("no JSON object found")

// ExtractJSONObject pulls the JSON object out of free text that may wrap it
// in prose or code fences. It first takes everything from the first '{' to
// the last '}'. When that span does not parse it falls back to a
// string-aware balanced scan starting at the first '{'.
func ExtractJSONObject(content string) (map[string]interface{}, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, errNoJSONObject
	}

	var obj map[string]interface{}
	greedyErr := json.Unmarshal([]byte(content[start:end+1]), &obj)
	if greedyErr == nil && obj != nil {
		return obj, nil
	}

	if span, ok := balancedObject(content[start:]); ok {
		obj = nil
		if err := json.Unmarshal([]byte(span), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}

	if greedyErr == nil {
		greedyErr = errNoJSONObject
	}
	return nil, greedyErr
}

// balancedObject returns the prefix of s (which starts with '{') that closes
// the opening brace, ignoring braces inside string literals.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
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
				return s[:i+1], true
			}
		}
	}
	return "", false
}

package draft

import (
	"encoding/json"
	"strings"

	"sitecms/internal/domain/entity"
)

// rawDraft is the JSON object the model is asked to return.
type rawDraft struct {
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

const fence = "```"

// parseDraft extracts the draft object from model output. It tries a strict
// parse of the trimmed text first, then the same text with markdown code
// fences removed, and reports a FormatError when neither yields an object
// carrying the fields kind requires.
func parseDraft(kind entity.Kind, output string) (rawDraft, error) {
	trimmed := strings.TrimSpace(output)

	d, err := decode(trimmed)
	if err != nil {
		d, err = decode(stripFences(trimmed))
	}
	if err != nil {
		return rawDraft{}, &entity.FormatError{Message: "response is not a JSON object", Raw: output}
	}

	if strings.TrimSpace(d.Title) == "" {
		return rawDraft{}, &entity.FormatError{Message: "missing title", Raw: output}
	}
	switch kind {
	case entity.KindPartnership:
		if strings.TrimSpace(d.Description) == "" {
			return rawDraft{}, &entity.FormatError{Message: "missing description", Raw: output}
		}
	default:
		if strings.TrimSpace(d.Content) == "" {
			return rawDraft{}, &entity.FormatError{Message: "missing content", Raw: output}
		}
	}
	return d, nil
}

func decode(s string) (rawDraft, error) {
	var d rawDraft
	err := json.Unmarshal([]byte(s), &d)
	return d, err
}

// stripFences returns the body of the first fenced block, skipping an
// optional language tag on the opening line. Without a closing fence the
// fence tokens are simply removed.
func stripFences(s string) string {
	start := strings.Index(s, fence)
	if start < 0 {
		return s
	}
	body := s[start+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLangTag(body[:nl]) {
		body = body[nl+1:]
	}
	if end := strings.Index(body, fence); end >= 0 {
		inner := strings.TrimSpace(body[:end])
		if !strings.HasPrefix(inner, "{") {
			inner = strings.TrimSpace(strings.TrimPrefix(inner, "json"))
		}
		return inner
	}
	body = strings.TrimSpace(strings.ReplaceAll(s, fence, ""))
	return strings.TrimSpace(strings.TrimPrefix(body, "json"))
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	// listPrefixRe strips numbering a model may prepend when echoing a
	// candidate ("1. ", "2) ", "- ").
	listPrefixRe = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)、])\s*`)
)

// CleanResponse strips reasoning tags and surrounding whitespace from a raw
// model answer.
func CleanResponse(s string) string {
	s = thinkTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Summarize asks the backend for a short summary of content, bounded to
// maxLen runes.
func (m *Manager) Summarize(ctx context.Context, fileName, content string, maxLen int) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	prompt := fmt.Sprintf(`Write a concise summary of the following file, at most %d characters.

File name: %s
File content:
%s

Return only the summary text, nothing else.`, maxLen, fileName, content)

	answer, err := m.Chat(ctx, []Message{
		{Role: "system", Content: "You are a document summarization assistant. Output only the summary, with no reasoning, tags or explanations."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	summary := []rune(CleanResponse(answer))
	if len(summary) > maxLen {
		summary = summary[:maxLen]
	}
	return string(summary), nil
}

// PickRequest describes one candidate-selection call.
type PickRequest struct {
	FileName   string
	Extension  string
	Summary    string
	Candidates []string
	// Rules holds optional per-directory hints, keyed by candidate name.
	Rules map[string]string
}

// PickCandidate asks the backend to choose exactly one of the given
// directory names. The answer must literally echo a candidate after
// cleanup; anything else is rejected with ok=false, never trusted.
func (m *Manager) PickCandidate(ctx context.Context, req PickRequest) (string, bool, error) {
	var rules strings.Builder
	for _, cand := range req.Candidates {
		if hint, found := req.Rules[cand]; found {
			fmt.Fprintf(&rules, "%s: %s\n", cand, hint)
		}
	}
	prompt := fmt.Sprintf(`Choose the single best matching directory for this file.

File name: %s
File extension: %s
Content summary: %s

Candidate directories (answer with exactly one of these names, no numbering, no punctuation, no extra text):
%s
`, req.FileName, req.Extension, orNone(req.Summary), strings.Join(req.Candidates, "\n"))
	if rules.Len() > 0 {
		prompt += "\nDirectory hints:\n" + rules.String()
	}

	answer, err := m.Chat(ctx, []Message{
		{Role: "system", Content: "You are a file classification assistant. Output only a directory name from the given list, with no reasoning, tags, numbering or explanations."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", false, err
	}

	picked, ok := MatchCandidate(answer, req.Candidates)
	return picked, ok, nil
}

// MatchCandidate normalizes a raw model answer and maps it onto one of the
// given candidates. Returns ok=false when the answer is outside the set.
func MatchCandidate(answer string, candidates []string) (string, bool) {
	cleaned := listPrefixRe.ReplaceAllString(CleanResponse(answer), "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", false
	}
	for _, c := range candidates {
		if cleaned == c {
			return c, true
		}
	}
	// Tolerate case differences and quoted answers, nothing looser.
	unquoted := strings.Trim(cleaned, `"'`)
	for _, c := range candidates {
		if strings.EqualFold(unquoted, c) {
			return c, true
		}
	}
	return "", false
}

func orNone(s string) string {
	if s == "" {
		return "(no summary available)"
	}
	return s
}

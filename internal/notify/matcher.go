package notify

import "strings"

// Content carries the searchable fields of an article, in match priority
// order: title, description, content.
type Content struct {
	Title       string
	Description string
	Content     string
}

// Field names reported in MatchResult.MatchedIn.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
)

// Normalize lowercases text and collapses internal whitespace to single
// spaces so that keyword comparison ignores case and spacing differences.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Match reports whether any keyword occurs as a substring of any field.
// Matched keywords keep their input order, deduplicated; matched fields
// keep the fixed title/description/content order. Blank keywords never
// match. Match has no side effects and is safe for concurrent use.
func Match(content Content, keywords []string) MatchResult {
	fields := []struct {
		name string
		text string
	}{
		{FieldTitle, Normalize(content.Title)},
		{FieldDescription, Normalize(content.Description)},
		{FieldContent, Normalize(content.Content)},
	}

	result := MatchResult{}
	seenKeyword := make(map[string]struct{}, len(keywords))
	hitField := make(map[string]struct{}, len(fields))

	for _, kw := range keywords {
		needle := Normalize(kw)
		if needle == "" {
			continue
		}
		for _, f := range fields {
			if f.text == "" || !strings.Contains(f.text, needle) {
				continue
			}
			result.Matched = true
			if _, ok := seenKeyword[kw]; !ok {
				seenKeyword[kw] = struct{}{}
				result.MatchedKeywords = append(result.MatchedKeywords, kw)
			}
			hitField[f.name] = struct{}{}
		}
	}

	for _, f := range fields {
		if _, ok := hitField[f.name]; ok {
			result.MatchedIn = append(result.MatchedIn, f.name)
		}
	}
	return result
}

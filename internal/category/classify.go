package category

import "strings"

// Keyword groups for caption/label classification. Captions from the incident
// feed arrive in Russian, so the Cyrillic entries are stems rather than full
// words: "дет" matches "дети", "детьми", "детей". Latin spellings cover
// relabeled channels.
var (
	aggressionTokens = []string{"агресси", "aggression"}
	childTokens      = []string{"дет", "ребен", "child"}
	teacherTokens    = []string{"воспитател", "учител", "teacher", "caregiver"}
	suddenTokens     = []string{"внезапн", "событи", "sudden", "event"}
	unattendedTokens = []string{"без присмотра", "unattended"}
)

// Classify derives a category from a message caption and, failing that, from
// the channel or folder label. Matching is case-insensitive substring search,
// first match wins. It never fails: the default category is returned when no
// keyword matches either input.
func Classify(caption, label string) Category {
	if cat, ok := classifyText(caption); ok {
		return cat
	}
	if cat, ok := classifyText(label); ok {
		return cat
	}
	return Default
}

func classifyText(text string) (Category, bool) {
	lowered := strings.ToLower(text)
	if lowered == "" {
		return "", false
	}

	switch {
	case containsAny(lowered, aggressionTokens) && containsAny(lowered, childTokens):
		return AggressionBetweenChildren, true
	case containsAny(lowered, aggressionTokens) && containsAny(lowered, teacherTokens):
		return AggressionTeacher, true
	case containsAny(lowered, suddenTokens):
		return SuddenEvent, true
	case containsAny(lowered, unattendedTokens):
		return ChildrenUnattended, true
	}
	return "", false
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

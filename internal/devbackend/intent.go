package devbackend

import (
	"strings"
	"unicode"
)

// Intent labels produced by the keyword classifier.
const (
	IntentGreeting = "인사"
	IntentThanks   = "감사"
	IntentFarewell = "작별"
)

type keywordRule struct {
	intent string
	// phrases match as substrings, words match whole lowercase words.
	phrases []string
	words   []string
}

// Farewell is checked first so "안녕히 가세요" is not read as a greeting.
var keywordRules = []keywordRule{
	{
		intent:  IntentFarewell,
		phrases: []string{"잘 가", "또 봐", "이만 가볼게", "안녕히"},
		words:   []string{"bye", "goodbye", "farewell"},
	},
	{
		intent:  IntentThanks,
		phrases: []string{"고마워", "감사해요", "감사합니다", "정말 고맙습니다"},
		words:   []string{"thanks", "thank", "thx"},
	},
	{
		intent:  IntentGreeting,
		phrases: []string{"안녕", "하이", "반가워요", "반가워", "좋은 하루 보내"},
		words:   []string{"hi", "hello", "hey"},
	},
}

// ClassifyIntent returns the intent label for text, or "" if no keyword
// matches. It stands in for the real classifier.
func ClassifyIntent(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, rule := range keywordRules {
		for _, p := range rule.phrases {
			if strings.Contains(text, p) {
				return rule.intent
			}
		}
		for _, w := range words {
			for _, kw := range rule.words {
				if w == kw {
					return rule.intent
				}
			}
		}
	}
	return ""
}

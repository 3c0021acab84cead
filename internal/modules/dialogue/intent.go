// README: Keyword intent classifiers (cancel / affirmative), Vietnamese and English.
package dialogue

import "strings"

// cancelKeywords covers the stop/cancel lexicon in both languages the hotel
// serves. Matching is case-insensitive and tolerant of punctuation.
var cancelKeywords = []string{
	"hủy", "huỷ", "hủy bỏ", "thôi", "không đặt nữa", "dừng lại", "dừng",
	"cancel", "stop", "quit", "never mind", "nevermind",
}

// affirmKeywords covers yes/confirm tokens used at the confirmation step.
var affirmKeywords = []string{
	"đúng", "đúng rồi", "chính xác", "xác nhận", "được", "ừ", "vâng", "dạ",
	"yes", "ok", "okay", "correct", "confirm", "right", "yep",
}

// IsCancelIntent reports whether the transcript expresses a wish to abandon
// the booking.
func IsCancelIntent(transcript string) bool {
	return matchesAny(transcript, cancelKeywords)
}

// IsAffirmative reports whether the transcript confirms the read-back
// summary at the confirmation step.
func IsAffirmative(transcript string) bool {
	return matchesAny(transcript, affirmKeywords)
}

func matchesAny(transcript string, keywords []string) bool {
	norm := normalizeUtterance(transcript)
	if norm == "" {
		return false
	}
	for _, kw := range keywords {
		if norm == kw {
			return true
		}
		// Whole-word containment: "please stop now" matches, "stopping by
		// the spa" does not.
		if strings.Contains(" "+norm+" ", " "+kw+" ") {
			return true
		}
	}
	return false
}

// normalizeUtterance lowercases and strips surrounding punctuation from each
// token of the transcript.
func normalizeUtterance(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".,!?;:\"'()")
	}
	return strings.Join(fields, " ")
}

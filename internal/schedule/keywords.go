package schedule

import "strings"

var requestHints = []string{
	"予定", "スケジュール", "会議", "ミーティング", "打ち合わせ", "打合せ",
	"カレンダー", "アポ", "約束", "予約", "面談", "登録して",
	"meeting", "appointment", "schedule", "calendar", "reschedule",
}

// IsRequest reports whether text looks like a scheduling request that
// should go through extraction instead of the conversational path.
func IsRequest(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	return containsAny(normalized, requestHints)
}

func containsAny(text string, values []string) bool {
	for _, v := range values {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}

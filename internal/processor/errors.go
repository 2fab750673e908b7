package processor

import "github.com/omriShneor/alfred_line/internal/llm"

// RateLimitedMessage replaces the raw error when the LLM provider throttles us.
const RateLimitedMessage = "現在リクエストが集中しています。しばらく時間をおいてから再度お試しください。"

func userFacingError(err error) string {
	if llm.IsRateLimited(err) {
		return RateLimitedMessage
	}
	return "エラーが発生しました:\n" + err.Error()
}

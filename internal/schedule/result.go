package schedule

// User-facing failure reasons.
const (
	ReasonUnparseable = "スケジュール情報の解析に失敗しました"
	ReasonNoSchedule  = "スケジュール情報が見つかりませんでした"
)

// Result is the outcome of an extraction: either a list of events or a
// failure reason. Err is set when the failure came from the LLM call.
type Result struct {
	Events []Event
	Reason string
	Err    error
}

// Success wraps extracted events.
func Success(events []Event) Result {
	return Result{Events: events}
}

// Failure builds a failed result carrying a user-facing reason.
func Failure(reason string, err error) Result {
	return Result{Reason: reason, Err: err}
}

// OK reports whether the result holds at least one event. A successful
// extraction with no events still counts as "no schedule found".
func (r Result) OK() bool {
	return r.Reason == "" && r.Err == nil && len(r.Events) > 0
}

// FailureReason returns the user-facing reason for a result that is not OK.
func (r Result) FailureReason() string {
	if r.Reason != "" {
		return r.Reason
	}
	if len(r.Events) == 0 {
		return ReasonNoSchedule
	}
	return ""
}

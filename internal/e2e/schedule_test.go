package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/alfred_line/internal/ics"
	"github.com/omriShneor/alfred_line/internal/llm"
	"github.com/omriShneor/alfred_line/internal/schedule"
	"github.com/omriShneor/alfred_line/internal/testutil"
)

const twoEvents = "```json\n" + `{"events":[
  {"title":"定例会議","start_datetime":"2025-12-17T14:00:00+09:00","end_datetime":"2025-12-17T15:00:00+09:00","description":"第3会議室"},
  {"title":"歯医者","start_datetime":"2025-12-18T09:30:00+09:00","end_datetime":"2025-12-18T10:00:00+09:00"}
]}` + "\n```"

func TestScheduleToCalendarDownload(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ts.LLM.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.System == schedule.SystemPrompt
	})).Return(twoEvents, nil).Once()

	ts.PostWebhook(testutil.NewWebhookBuilder().
		TextFromUser("U1", "明日14時から定例会議、明後日9時半に歯医者の予定を入れて").
		MustBuild())

	sent := ts.WaitForSent(1)
	reply := sent[0].Text
	assert.Equal(t, "reply", sent[0].Method)
	assert.True(t, strings.HasPrefix(reply, "📅 スケジュール登録完了\n\n1. 定例会議\n   2025年12月17日(水) 14:00〜15:00\n   第3会議室\n\n2. 歯医者"), reply)

	prefix := ts.BaseURL() + "/calendar/"
	idx := strings.Index(reply, prefix)
	require.GreaterOrEqual(t, idx, 0, reply)
	url := strings.TrimSpace(reply[idx:])

	t.Run("download the calendar file", func(t *testing.T) {
		resp, err := ts.Client().Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, ics.ContentType, resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		cal, err := ical.ParseCalendar(strings.NewReader(string(body)))
		require.NoError(t, err)

		events := cal.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "定例会議", events[0].GetProperty(ical.ComponentPropertySummary).Value)
		assert.Equal(t, "20251217T050000Z", events[0].GetProperty(ical.ComponentPropertyDtStart).Value)
		assert.Equal(t, "歯医者", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	})

	t.Run("QR code for the link", func(t *testing.T) {
		resp, err := ts.Client().Get(url + "/qr")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	})
}

func TestScheduleWithoutEvents(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.LLM.On("Complete", mock.Anything, mock.Anything).Return(`{"events":[]}`, nil).Once()

	ts.PostWebhook(testutil.NewWebhookBuilder().TextFromUser("U1", "スケジュールって何？").MustBuild())

	sent := ts.WaitForSent(1)
	assert.Equal(t, schedule.ReasonNoSchedule, sent[0].Text)
}

func TestScheduleUnparseableReply(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.LLM.On("Complete", mock.Anything, mock.Anything).Return("予定はありません。", nil).Once()

	ts.PostWebhook(testutil.NewWebhookBuilder().TextFromUser("U1", "会議いつだっけ").MustBuild())

	sent := ts.WaitForSent(1)
	assert.Equal(t, schedule.ReasonUnparseable, sent[0].Text)
}

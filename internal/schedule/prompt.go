package schedule

import (
	"bytes"
	"fmt"
	"time"

	"github.com/omriShneor/alfred_line/internal/timeutil"
)

// SystemPrompt frames the model as a strict extractor.
const SystemPrompt = `あなたはメッセージから予定を抽出するアシスタントです。
指定されたJSON形式のみを返してください。説明文やコメントは一切含めないでください。`

const outputContract = `以下のJSON形式で返してください（JSON以外の説明文は不要）:
{
  "events": [
    {
      "title": "イベントタイトル",
      "start_datetime": "2025-12-17T14:00:00+09:00",
      "end_datetime": "2025-12-17T15:00:00+09:00",
      "description": "詳細説明（省略可）"
    }
  ]
}

ルール:
1. 日時は ISO8601 形式 (YYYY-MM-DDTHH:MM:SS+09:00) で、必ずUTCオフセットを付けて返す
2. 終了時刻が指定されていない場合は開始から1時間後とする
3. 「明日」「来週」などの相対日時は上記の現在時刻を基準に計算する
4. 複数のイベントがある場合は配列に時系列順で含める
5. スケジュール情報が含まれていない場合は events を空配列にする
`

// BuildPrompt embeds the reference time and the raw message so relative
// expressions resolve against ref rather than the model's own notion of now.
func BuildPrompt(message string, ref time.Time) string {
	ref = ref.In(timeutil.Location())

	var prompt bytes.Buffer
	prompt.WriteString("以下のメッセージからスケジュール情報を抽出してJSON形式で返してください。\n\n")
	prompt.WriteString(fmt.Sprintf("現在時刻: %s %s (日本時間, %s)\n\n",
		timeutil.FormatJapaneseDate(ref),
		timeutil.FormatClock(ref),
		ref.Format(time.RFC3339),
	))
	prompt.WriteString(fmt.Sprintf("メッセージ: %s\n\n", message))
	prompt.WriteString(outputContract)
	return prompt.String()
}

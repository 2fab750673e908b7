package processor

import (
	"context"
	"strings"
	"time"

	"github.com/omriShneor/alfred_line/internal/history"
	"github.com/omriShneor/alfred_line/internal/llm"
	"github.com/omriShneor/alfred_line/internal/source"
)

// ChatSystemPrompt defines the assistant's role for conversational replies.
const ChatSystemPrompt = `あなたはLINEで利用できるアシスタントです。
ユーザーからの質問や開発依頼に対して、簡潔で実用的な回答を返します。

回答の形式:
1. 簡潔な説明（1-2行）
2. コードブロック（必要に応じて）
3. 使い方・注意点（簡潔に）

制約:
- 回答は3000文字以内を目安にする（LINEで読みやすい長さ）
- コードは実装可能な完全な形で提供する
- 専門用語は必要最小限にする
- これまでの会話が渡された場合は、その文脈を踏まえて回答する
`

func (p *Processor) handleChat(ctx context.Context, msg source.Message, turns []history.Turn) (string, error) {
	started := time.Now()
	reply, err := p.completer.Complete(ctx, llm.Request{
		System: ChatSystemPrompt,
		Prompt: buildChatPrompt(turns, msg.Text),
	})
	p.metrics.LLMCall(routeChat, started, errKind(err))
	if err != nil {
		return "", err
	}
	return reply, nil
}

// buildChatPrompt prefixes the new message with the recent transcript.
func buildChatPrompt(turns []history.Turn, text string) string {
	transcript := history.RenderTranscript(turns)
	if transcript == "" {
		return text
	}

	var b strings.Builder
	b.WriteString(transcript)
	b.WriteString("\n新しいメッセージ:\n")
	b.WriteString(text)
	return b.String()
}

func errKind(err error) string {
	if err == nil {
		return ""
	}
	return llm.KindOf(err).String()
}

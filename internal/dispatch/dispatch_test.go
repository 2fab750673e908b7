package dispatch

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertReconstructs checks that chunks are the original text with only
// whitespace removed at the cut points.
func assertReconstructs(t *testing.T, original string, chunks []string) {
	t.Helper()
	rest := original
	for i, chunk := range chunks {
		if i > 0 || !strings.HasPrefix(rest, chunk) {
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		}
		require.True(t, strings.HasPrefix(rest, chunk), "chunk %d does not continue the original text", i)
		rest = rest[len(chunk):]
	}
	assert.Empty(t, strings.TrimSpace(rest), "text lost after the last chunk")
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	for _, text := range []string{"a", "こんにちは", "line one\nline two", "  padded  "} {
		chunks := Split(text, 4500)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	}
}

func TestSplit_ExactlyMaxLen(t *testing.T) {
	text := strings.Repeat("あ", 10)
	assert.Equal(t, []string{text}, Split(text, 10))
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", 10))
}

func TestSplit_PrefersLastNewline(t *testing.T) {
	text := "aaaa\nbbbb\ncccc"

	chunks := Split(text, 10)

	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)
}

func TestSplit_NewlineAtBoundary(t *testing.T) {
	// The newline sits exactly at index maxLen.
	chunks := Split("12345\n6789", 5)

	assert.Equal(t, []string{"12345", "6789"}, chunks)
}

func TestSplit_HardSplitWithoutNewline(t *testing.T) {
	chunks := Split("abcdefghij", 4)

	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("予", 9)

	chunks := Split(text, 4)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 4)
		assert.True(t, utf8.ValidString(c))
	}
}

func TestSplit_StripsLeadingBlankLines(t *testing.T) {
	chunks := Split("first\n\n\n   last", 5)

	assert.Equal(t, []string{"first", "last"}, chunks)
}

func TestSplit_LeadingBlankLinesAreNotAChunk(t *testing.T) {
	assert.Equal(t, []string{"ab", "c"}, Split("\n\nabc", 2))
	assert.Equal(t, []string{"abcd"}, Split("    abcd", 4))
}

func TestSplit_WhitespaceOnlyLongText(t *testing.T) {
	assert.Empty(t, Split("\n \n \n", 2))
}

func TestSplit_TrailingWhitespaceDoesNotProduceEmptyChunk(t *testing.T) {
	chunks := Split("abcd\n   ", 4)

	assert.Equal(t, []string{"abcd"}, chunks)
}

func TestSplit_ClampsMaxLen(t *testing.T) {
	chunks := Split("abc", 0)

	assert.Equal(t, []string{"a", "b", "c"}, chunks)
}

func TestSplit_Properties(t *testing.T) {
	alphabet := []rune("ab あい\n\t")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := rng.Intn(200)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(runes)
		maxLen := 1 + rng.Intn(30)

		chunks := Split(text, maxLen)

		for _, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), maxLen)
			assert.NotEmpty(t, c)
			if n > maxLen {
				assert.NotEmpty(t, strings.TrimSpace(c), "whitespace-only chunk")
			}
		}
		if n > 0 && n <= maxLen {
			assert.Equal(t, []string{text}, chunks)
		}
		assertReconstructs(t, text, chunks)
	}
}

type call struct {
	method string
	to     string
	text   string
}

type recordingMessenger struct {
	calls   []call
	pushErr error
}

func (m *recordingMessenger) Reply(_ context.Context, replyToken, text string) error {
	m.calls = append(m.calls, call{"reply", replyToken, text})
	return nil
}

func (m *recordingMessenger) Push(_ context.Context, to, text string) error {
	m.calls = append(m.calls, call{"push", to, text})
	return m.pushErr
}

func TestDispatcher_SingleChunkReplies(t *testing.T) {
	m := &recordingMessenger{}
	d := NewDispatcher(m, 100, nil)

	mode, err := d.Deliver(context.Background(), Target{ReplyToken: "tok", ConversationID: "U1"}, "hello")

	require.NoError(t, err)
	assert.Equal(t, ModeReply, mode)
	assert.Equal(t, []call{{"reply", "tok", "hello"}}, m.calls)
}

func TestDispatcher_MultipleChunksArePushed(t *testing.T) {
	m := &recordingMessenger{}
	d := NewDispatcher(m, 5, nil)

	mode, err := d.Deliver(context.Background(), Target{ReplyToken: "tok", ConversationID: "G1"}, "aaaaa\nbbbbb\nccc")

	require.NoError(t, err)
	assert.Equal(t, ModePush, mode)
	assert.Equal(t, []call{
		{"push", "G1", "aaaaa"},
		{"push", "G1", "bbbbb"},
		{"push", "G1", "ccc"},
	}, m.calls)
}

func TestDispatcher_LeadingBlankLineIsNotPushed(t *testing.T) {
	m := &recordingMessenger{}

	mode, err := NewDispatcher(m, 2, nil).Deliver(context.Background(), Target{ReplyToken: "tok", ConversationID: "U1"}, "\n\nabc")

	require.NoError(t, err)
	assert.Equal(t, ModePush, mode)
	assert.Equal(t, []call{{"push", "U1", "ab"}, {"push", "U1", "c"}}, m.calls)
}

func TestDispatcher_EmptyTextSendsNothing(t *testing.T) {
	m := &recordingMessenger{}

	mode, err := NewDispatcher(m, 0, nil).Deliver(context.Background(), Target{ReplyToken: "tok"}, "")

	require.NoError(t, err)
	assert.Equal(t, ModeNone, mode)
	assert.Empty(t, m.calls)
}

func TestDispatcher_PushFailureStops(t *testing.T) {
	m := &recordingMessenger{pushErr: errors.New("quota exceeded")}
	d := NewDispatcher(m, 3, nil)

	_, err := d.Deliver(context.Background(), Target{ConversationID: "U1"}, "abcdefghi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "push chunk 1/3")
	assert.Len(t, m.calls, 1)
}

func TestNewDispatcher_DefaultMaxChars(t *testing.T) {
	assert.Equal(t, DefaultMaxChars, NewDispatcher(&recordingMessenger{}, -1, nil).maxChars)
}

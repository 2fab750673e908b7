package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindConstants(t *testing.T) {
	assert.Equal(t, Kind("user"), KindUser)
	assert.Equal(t, Kind("group"), KindGroup)
	assert.Equal(t, Kind("room"), KindRoom)
}

func TestMessage_IsGroup(t *testing.T) {
	assert.False(t, Message{Kind: KindUser}.IsGroup())
	assert.True(t, Message{Kind: KindGroup}.IsGroup())
	assert.True(t, Message{Kind: KindRoom}.IsGroup())
}

func TestMessage_Identities(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want []string
	}{
		{
			name: "one to one",
			msg:  Message{Kind: KindUser, ConversationID: "U1", SenderID: "U1"},
			want: []string{"U1"},
		},
		{
			name: "group with sender",
			msg:  Message{Kind: KindGroup, ConversationID: "C1", SenderID: "U1"},
			want: []string{"U1", "C1"},
		},
		{
			name: "room without sender",
			msg:  Message{Kind: KindRoom, ConversationID: "R1"},
			want: []string{"R1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Identities())
		})
	}
}

package validation

import (
	"strings"
	"testing"

	"rizq/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMessageContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{"Trimmed", "  salaam  ", "salaam", nil},
		{"Empty", "", "", ErrEmptyMessage},
		{"Whitespace Only", " \n\t ", "", ErrEmptyMessage},
		{"Exactly Max Length", strings.Repeat("é", models.MaxMessageLength), strings.Repeat("é", models.MaxMessageLength), nil},
		{"Too Long", strings.Repeat("x", models.MaxMessageLength+1), "", ErrMessageTooLong},
		{"Invalid UTF-8", "caf\xe9 au lait", "", ErrInvalidEncoding},
		{"Truncated Multibyte", "salaam \xd8", "", ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := MessageContent(tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDealPitch(t *testing.T) {
	t.Parallel()
	_, err := DealPitch("   ")
	assert.ErrorIs(t, err, ErrEmptyPitch)

	got, err := DealPitch(" I can start Monday ")
	assert.NoError(t, err)
	assert.Equal(t, "I can start Monday", got)
}

func TestClientID(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ClientID(""))
	assert.NoError(t, ClientID(uuid.NewString()))
	assert.ErrorIs(t, ClientID("tmp-1"), ErrInvalidClientID)
}

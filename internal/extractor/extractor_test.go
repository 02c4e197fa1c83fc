package extractor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/moodboard/internal/apperrors"
)

func TestExtractTXT(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "blank lines dropped",
			content: "Great!\n\nTerrible.\n",
			want:    []string{"Great!", "Terrible."},
		},
		{
			name:    "whitespace-only lines dropped",
			content: "one\n   \n\ttwo\t\n",
			want:    []string{"one", "two"},
		},
		{
			name:    "order preserved",
			content: "c\na\nb",
			want:    []string{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, trunc, err := Extract("notes.txt", tt.content)
			require.NoError(t, err)
			assert.Nil(t, trunc)
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestExtractCSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "header row skipped",
			content: "text,author\nhello,me\nworld,you\n",
			want:    []string{"hello", "world"},
		},
		{
			name:    "no header kept",
			content: "hello,me\nworld,you\n",
			want:    []string{"hello", "world"},
		},
		{
			name:    "quoted first field",
			content: "Text\n\"loved it, truly\",5\nplain,1\n",
			want:    []string{"loved it, truly", "plain"},
		},
		{
			name:    "single column",
			content: "just one line",
			want:    []string{"just one line"},
		},
		{
			name:    "empty fields dropped",
			content: "text\n,5\nok,3\n",
			want:    []string{"ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, _, err := Extract("data.csv", tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "array of strings",
			content: `["good", "bad"]`,
			want:    []string{"good", "bad"},
		},
		{
			name:    "array of objects by priority key",
			content: `[{"text":"a"},{"content":"b"},{"message":"c"}]`,
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "text wins over content",
			content: `[{"text":"a","content":"b"}]`,
			want:    []string{"a"},
		},
		{
			name:    "non-string elements stringified",
			content: `[42, true]`,
			want:    []string{"42", "true"},
		},
		{
			name:    "texts field taken directly",
			content: `{"texts":["x","y"]}`,
			want:    []string{"x", "y"},
		},
		{
			name:    "data field mapped",
			content: `{"data":[{"text":"ok"},{"content":"fine"}]}`,
			want:    []string{"ok", "fine"},
		},
		{
			name:    "empty strings dropped in array form",
			content: `["", "kept"]`,
			want:    []string{"kept"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, _, err := Extract("payload.json", tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  error
	}{
		{"unsupported extension", "doc.pdf", "whatever", apperrors.ErrUnsupportedFormat},
		{"no extension", "README", "whatever", apperrors.ErrUnsupportedFormat},
		{"empty txt", "empty.txt", "\n  \n", apperrors.ErrEmptyExtraction},
		{"invalid json", "broken.json", "{not json", apperrors.ErrEmptyExtraction},
		{"json object with no known field", "odd.json", `{"other": 1}`, apperrors.ErrEmptyExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Extract(tt.filename, tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestExtractUppercaseExtension(t *testing.T) {
	texts, _, err := Extract("NOTES.TXT", "hello\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, texts)
}

func TestExtractTruncation(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}

	texts, trunc, err := Extract("big.txt", sb.String())
	require.NoError(t, err)
	require.NotNil(t, trunc)
	assert.Equal(t, 60, trunc.Original)
	assert.Equal(t, 50, trunc.Kept)
	assert.Len(t, texts, 50)
	assert.Equal(t, "line 0", texts[0])
	assert.Equal(t, "line 49", texts[49])
}

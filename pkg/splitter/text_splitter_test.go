package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestHead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
	}{
		{"Short text is one chunk", "A short paragraph.", 100},
		{"Paragraphs", strings.Repeat("Paragraph of words here.\n\n", 40), 100},
		{"Single long word", strings.Repeat("A", 500), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewRecursiveCharacterTextSplitter(tt.maxRunes, 0)
			head := ts.Head(tt.input)
			assert.NotEmpty(t, head)
			assert.LessOrEqual(t, utf8.RuneCountInString(head), tt.maxRunes)
		})
	}
}

func TestHeadOfShortTextIsWholeText(t *testing.T) {
	ts := NewRecursiveCharacterTextSplitter(100, 0)
	assert.Equal(t, "A short paragraph.", ts.Head("A short paragraph."))
}

package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey(t *testing.T) {
	t.Run("short title kept whole", func(t *testing.T) {
		i := Insight{Type: "trend", Title: "Revenue increased 20.0%"}
		assert.Equal(t, "trend|Revenue increased 20.0%", i.DedupKey())
	})

	t.Run("long title truncated to 50 runes", func(t *testing.T) {
		i := Insight{Type: "concentration", Title: strings.Repeat("a", 80)}
		assert.Equal(t, "concentration|"+strings.Repeat("a", 50), i.DedupKey())
	})

	t.Run("multibyte title truncates on rune boundary", func(t *testing.T) {
		// 49 ASCII runes followed by multibyte characters: a byte slice at
		// 50 would cut the first one mid-sequence.
		i := Insight{Type: "deviation", Title: strings.Repeat("x", 49) + "日本語"}
		key := i.DedupKey()
		assert.True(t, utf8.ValidString(key))
		assert.Equal(t, "deviation|"+strings.Repeat("x", 49)+"日", key)
	})
}

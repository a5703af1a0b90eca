package text_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sitecms/internal/utils/text"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", text.TruncateRunes("short", 80))

	exact := strings.Repeat("é", 80)
	assert.Equal(t, exact, text.TruncateRunes(exact, 80))

	long := strings.Repeat("é", 120)
	got := text.TruncateRunes(long, 80)
	assert.Equal(t, 80, text.CountRunes(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("é", 77)+"...", got)
}

func TestTruncateAtSentence(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		s := strings.Repeat("a", 280)
		assert.Equal(t, s, text.TruncateAtSentence(s, 280, 200))
	})

	t.Run("cuts after late period", func(t *testing.T) {
		// period at rune index 249, inside the 277 rune window
		s := strings.Repeat("a", 249) + "." + strings.Repeat("b", 100)
		got := text.TruncateAtSentence(s, 280, 200)
		assert.Equal(t, 250, text.CountRunes(got))
		assert.True(t, strings.HasSuffix(got, "."))
	})

	t.Run("early period falls back to ellipsis", func(t *testing.T) {
		s := strings.Repeat("a", 100) + "." + strings.Repeat("b", 300)
		got := text.TruncateAtSentence(s, 280, 200)
		assert.Equal(t, 280, text.CountRunes(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("period at the minimum index is kept", func(t *testing.T) {
		s := strings.Repeat("a", 200) + "." + strings.Repeat("b", 200)
		got := text.TruncateAtSentence(s, 280, 200)
		assert.Equal(t, 201, text.CountRunes(got))
	})

	t.Run("period beyond the window is ignored", func(t *testing.T) {
		s := strings.Repeat("a", 278) + "." + strings.Repeat("b", 10)
		got := text.TruncateAtSentence(s, 280, 200)
		assert.Equal(t, strings.Repeat("a", 277)+"...", got)
	})
}

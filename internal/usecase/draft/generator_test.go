package draft

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"sitecms/internal/domain/entity"
	"sitecms/internal/infra/textgen"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTextGen struct {
	out   string
	err   error
	calls int
	last  textgen.Request
}

func (s *stubTextGen) Generate(_ context.Context, req textgen.Request) (string, error) {
	s.calls++
	s.last = req
	return s.out, s.err
}

/* ──────────────────────────────── preconditions ──────────────────────────────── */

func TestDraft_EmptyPromptMakesNoCall(t *testing.T) {
	tg := &stubTextGen{}
	_, err := NewGenerator(tg).Draft(context.Background(), entity.KindNews, "   ")

	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "prompt", ve.Field)
	assert.Zero(t, tg.calls)
}

func TestDraft_Unconfigured(t *testing.T) {
	_, err := NewGenerator(textgen.NewUnconfigured("ANTHROPIC_API_KEY", "not set")).
		Draft(context.Background(), entity.KindNews, "Fête de la musique")

	var ce *entity.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ANTHROPIC_API_KEY", ce.Setting)

	_, err = NewGenerator(nil).Draft(context.Background(), entity.KindNews, "x")
	require.ErrorAs(t, err, &ce)
}

func TestDraft_CapabilityErrorSurfacedOnce(t *testing.T) {
	tg := &stubTextGen{err: errors.New("overloaded_error: Overloaded")}
	_, err := NewGenerator(tg).Draft(context.Background(), entity.KindNews, "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded_error: Overloaded")
	assert.Equal(t, 1, tg.calls)
}

/* ──────────────────────────────── parsing ──────────────────────────────── */

func TestDraft_News(t *testing.T) {
	tg := &stubTextGen{out: `{"title":"Journées du patrimoine","excerpt":"Portes ouvertes.","content":"<p>Venez.</p>"}`}
	res, err := NewGenerator(tg).Draft(context.Background(), entity.KindNews, "patrimoine")
	require.NoError(t, err)

	want := Result{Title: "Journées du patrimoine", Excerpt: "Portes ouvertes.", Content: "<p>Venez.</p>"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Draft() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, newsSystemPrompt, tg.last.System)
	assert.Equal(t, "patrimoine", tg.last.Prompt)
}

func TestDraft_FencedJSON(t *testing.T) {
	tg := &stubTextGen{out: "```json\n{\"title\":\"Atelier\",\"description\":\"Un atelier de vitrail.\"}\n```"}
	res, err := NewGenerator(tg).Draft(context.Background(), entity.KindPartnership, "atelier vitrail")
	require.NoError(t, err)

	assert.Equal(t, "Atelier", res.Title)
	assert.Equal(t, "Un atelier de vitrail.", res.Description)
	assert.Equal(t, partnershipSystemPrompt, tg.last.System)
}

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name    string
		kind    entity.Kind
		output  string
		wantErr bool
	}{
		{"strict", entity.KindNews, `{"title":"a","content":"b"}`, false},
		{"surrounding whitespace", entity.KindNews, "\n  {\"title\":\"a\",\"content\":\"b\"}\n", false},
		{"fence without tag", entity.KindNews, "```\n{\"title\":\"a\",\"content\":\"b\"}\n```", false},
		{"prose before fence", entity.KindNews, "Voici :\n```json\n{\"title\":\"a\",\"content\":\"b\"}\n```\nBonne lecture", false},
		{"single-line fence", entity.KindNews, "```json {\"title\":\"a\",\"content\":\"b\"}```", false},
		{"unclosed fence", entity.KindNews, "```json\n{\"title\":\"a\",\"content\":\"b\"}", false},
		{"plain prose", entity.KindNews, "Désolé, je ne peux pas.", true},
		{"missing content", entity.KindNews, `{"title":"a","excerpt":"b"}`, true},
		{"missing description", entity.KindPartnership, `{"title":"a","content":"b"}`, true},
		{"blank title", entity.KindPartnership, `{"title":"  ","description":"b"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraft(tt.kind, tt.output)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var fe *entity.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.output, fe.Raw)
		})
	}
}

/* ──────────────────────────────── truncation ──────────────────────────────── */

func TestDraft_TruncatesLongFields(t *testing.T) {
	longTitle := strings.Repeat("é", 95)
	longExcerpt := strings.Repeat("x", 200)
	tg := &stubTextGen{out: `{"title":"` + longTitle + `","excerpt":"` + longExcerpt + `","content":"<p>c</p>"}`}

	res, err := NewGenerator(tg).Draft(context.Background(), entity.KindNews, "x")
	require.NoError(t, err)

	assert.Equal(t, MaxTitle, utf8.RuneCountInString(res.Title))
	assert.True(t, strings.HasSuffix(res.Title, "..."))
	assert.Equal(t, strings.Repeat("é", 77)+"...", res.Title)
	assert.Equal(t, MaxExcerpt, utf8.RuneCountInString(res.Excerpt))
}

func TestDraft_DescriptionCutAtSentence(t *testing.T) {
	// period at rune index 239, inside the last 80 runes of the 277-rune window
	desc := strings.Repeat("a", 239) + "." + strings.Repeat("b", 100)
	tg := &stubTextGen{out: `{"title":"P","description":"` + desc + `"}`}

	res, err := NewGenerator(tg).Draft(context.Background(), entity.KindPartnership, "x")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 239)+".", res.Description)
}

func TestDraft_DescriptionCutBoundary(t *testing.T) {
	tests := []struct {
		period int
		want   string
	}{
		{period: 196, want: strings.Repeat("a", 196) + "." + strings.Repeat("b", 80) + "..."},
		{period: 197, want: strings.Repeat("a", 197) + "."},
		{period: 199, want: strings.Repeat("a", 199) + "."},
		{period: 200, want: strings.Repeat("a", 200) + "."},
	}
	for _, tt := range tests {
		desc := strings.Repeat("a", tt.period) + "." + strings.Repeat("b", 300)
		tg := &stubTextGen{out: `{"title":"P","description":"` + desc + `"}`}

		res, err := NewGenerator(tg).Draft(context.Background(), entity.KindPartnership, "x")
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Description, "period at rune %d", tt.period)
		assert.LessOrEqual(t, utf8.RuneCountInString(res.Description), MaxDescription)
	}
}

func TestDraft_DescriptionEllipsisWhenPeriodTooEarly(t *testing.T) {
	desc := strings.Repeat("a", 50) + "." + strings.Repeat("b", 300)
	tg := &stubTextGen{out: `{"title":"P","description":"` + desc + `"}`}

	res, err := NewGenerator(tg).Draft(context.Background(), entity.KindPartnership, "x")
	require.NoError(t, err)
	assert.Equal(t, MaxDescription, utf8.RuneCountInString(res.Description))
	assert.True(t, strings.HasSuffix(res.Description, "..."))
}

package ocr

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNeedsRestoration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "clean text",
			text: "This is a perfectly ordinary sentence.",
			want: false,
		},
		{
			name: "very long word",
			text: "contains averylongwordthatkeepsgoingand more",
			want: true,
		},
		{
			name: "lowercase followed by uppercase",
			text: "runTogether words",
			want: true,
		},
		{
			name: "punctuation jammed between words",
			text: "first.second sentence",
			want: true,
		},
		{
			name: "capital run into lowercase",
			text: "WEIRDcasing here",
			want: true,
		},
		{
			name: "empty string",
			text: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRestoration(tt.text))
		})
	}
}

func TestRestorer_Restore(t *testing.T) {
	r := NewRestorer()

	t.Run("clean text passes through unchanged", func(t *testing.T) {
		in := "This is a perfectly ordinary sentence."
		assert.Equal(t, in, r.Restore(in))
	})

	t.Run("run-together words are segmented", func(t *testing.T) {
		got := r.Restore("TestingThePunctuation and more")
		assert.Equal(t, "Testing The Punctuation and more", got)
	})

	t.Run("casing is preserved per segment", func(t *testing.T) {
		got := r.Restore("TestingThe.Punctuation")
		assert.Contains(t, got, "Testing")
		assert.Contains(t, got, "The")
		assert.Contains(t, got, "Punctuation")
	})

	t.Run("punctuation is reinserted between segments", func(t *testing.T) {
		got := r.Restore("TestingThe.Punctuation,AndCasing")
		assert.Equal(t, "Testing The. Punctuation, And Casing", got)
	})

	t.Run("urls survive untouched", func(t *testing.T) {
		got := r.Restore("runTogether see https://example.com/some/long/path?q=1 end")
		assert.Contains(t, got, "https://example.com/some/long/path?q=1")
	})

	t.Run("short tokens are never segmented", func(t *testing.T) {
		// "anotherone" is 10 chars and qualifies; "another" alone does not.
		got := r.Restore("someWord another word")
		assert.Contains(t, got, "another")
	})

	t.Run("gibberish stays whole", func(t *testing.T) {
		got := r.Restore("runTogether xqzvplmwrtk end")
		assert.Contains(t, got, "xqzvplmwrtk")
	})

	t.Run("non-ascii token passes through unchanged", func(t *testing.T) {
		// 'Ⱥ' widens from two to three bytes under ToLower; the token
		// must come back whole instead of panicking on byte offsets.
		in := "thecatandthedogȺhouse"
		assert.Equal(t, in, r.Restore(in))
	})

	t.Run("non-ascii token is never corrupted", func(t *testing.T) {
		// 'İ' shrinks to one byte under ToLower, which would shear the
		// case-restoration slices mid-rune.
		got := r.Restore("thisisİstanbulandthecity")
		assert.True(t, utf8.ValidString(got))
		assert.Contains(t, got, "İstanbul")
	})
}

func TestRestorer_SegmentPreserveCase(t *testing.T) {
	r := NewRestorer()

	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{
			name:  "camel case split",
			token: "TestingThePunctuation",
			want:  []string{"Testing", "The", "Punctuation"},
		},
		{
			name:  "all upper segment",
			token: "WEIRDCASING",
			want:  []string{"WEIRD", "CASING"},
		},
		{
			name:  "lowercase split",
			token: "testingthe",
			want:  []string{"testing", "the"},
		},
		{
			name:  "unsplittable token returned whole",
			token: "xqzvplmwrtk",
			want:  []string{"xqzvplmwrtk"},
		},
		{
			name:  "token whose lowering changes byte length returned whole",
			token: "thecatandthedogȺhouse",
			want:  []string{"thecatandthedogȺhouse"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.segmentPreserveCase(tt.token))
		})
	}
}

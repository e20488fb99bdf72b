package crisis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "direct trigger phrase",
			text:     "мне очень плохо, хочу умереть",
			expected: true,
		},
		{
			name:     "trigger inside longer sentence",
			text:     "иногда мне кажется, что лучше покончить с собой, чем так жить",
			expected: true,
		},
		{
			name:     "inflected stem",
			text:     "я думаю о самоубийстве",
			expected: true,
		},
		{
			name:     "case insensitive",
			text:     "ХОЧУ УМЕРЕТЬ",
			expected: true,
		},
		{
			name:     "ordinary hard day",
			text:     "Сегодня был трудный день",
			expected: false,
		},
		{
			name:     "empty text",
			text:     "",
			expected: false,
		},
		{
			name:     "unrelated mention of life",
			text:     "хочу жить у моря",
			expected: false,
		},
	}

	f := NewFilter(true, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Match(tt.text))
		})
	}
}

func TestFilter_ExtraWords(t *testing.T) {
	f := NewFilter(true, []string{" Навредить Себе ", ""})

	assert.True(t, f.Match("боюсь навредить себе"))
	assert.False(t, f.Match("всё в порядке"))
}

func TestFilter_Disabled(t *testing.T) {
	f := NewFilter(false, nil)

	assert.False(t, f.Match("хочу умереть"))
}

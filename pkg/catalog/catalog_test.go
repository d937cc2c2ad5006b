package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, c.AgeGroups)
	assert.NotEmpty(t, c.Genders)
	assert.NotEmpty(t, c.ArtStyles)
	assert.NotEmpty(t, c.Emotions)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestLookups(t *testing.T) {
	c := MustLoad()

	t.Run("存在するID", func(t *testing.T) {
		a, ok := c.AgeGroup("teen")
		assert.True(t, ok)
		assert.NotEmpty(t, a.ReadingLevel)

		e, ok := c.Emotion("joy")
		assert.True(t, ok)
		assert.Equal(t, "기쁨", e.Label)

		_, ok = c.Gender("female")
		assert.True(t, ok)
		_, ok = c.ArtStyle("webtoon")
		assert.True(t, ok)
	})

	t.Run("存在しないID", func(t *testing.T) {
		_, ok := c.AgeGroup("martian")
		assert.False(t, ok)
		_, ok = c.Emotion("")
		assert.False(t, ok)
		assert.Equal(t, "unknown", c.EmotionLabel("unknown"))
	})
}

func TestCatalog_Labels(t *testing.T) {
	c := MustLoad()

	l := c.Labels(domain.Profile{AgeGroup: "child", Gender: "nobody", ArtStyle: "anime"}, "anxiety")
	assert.Equal(t, "어린이 (7-12세)", l.AgeGroup)
	assert.Empty(t, l.Gender, "未知のIDは空")
	assert.NotEmpty(t, l.ArtStyle)
	assert.Equal(t, "불안", l.Emotion)

	var none *Catalog
	assert.Equal(t, domain.Labels{}, none.Labels(domain.Profile{AgeGroup: "child"}, "joy"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"壊れたYAML", "age_groups: [ {"},
		{"空のグループ", "age_groups: []\ngenders: [{id: a}]\nart_styles: [{id: a}]\nemotions: [{id: a}]"},
		{"重複ID", "age_groups: [{id: a}, {id: a}]\ngenders: [{id: a}]\nart_styles: [{id: a}]\nemotions: [{id: a}]"},
		{"IDなし", "age_groups: [{label: x}]\ngenders: [{id: a}]\nart_styles: [{id: a}]\nemotions: [{id: a}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

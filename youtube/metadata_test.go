package youtube_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryID(t *testing.T) {
	cases := map[string]string{
		"":                            "22",
		"27":                          "27",
		"22 - People & Blogs":         "22",
		" 28 - Science & Technology ": "28",
	}
	for input, want := range cases {
		got, err := youtube.ParseCategoryID(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := youtube.ParseCategoryID("Comedy")
	require.ErrorIs(t, err, youtube.ErrInvalidMetadata)
}

func TestCategories(t *testing.T) {
	cats := youtube.Categories()
	require.Len(t, cats, 8)
	require.Equal(t, "22 - People & Blogs", cats[0].Label())
	require.Equal(t, "29 - Nonprofits & Activism", cats[len(cats)-1].Label())

	cats[0].Title = "changed"
	require.Equal(t, "People & Blogs", youtube.Categories()[0].Title)
}

func TestParsePrivacy(t *testing.T) {
	for input, want := range map[string]youtube.PrivacyStatus{
		"":         youtube.PrivacyPrivate,
		"public":   youtube.PrivacyPublic,
		"Unlisted": youtube.PrivacyUnlisted,
		" private": youtube.PrivacyPrivate,
	} {
		got, err := youtube.ParsePrivacy(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := youtube.ParsePrivacy("friends-only")
	require.ErrorIs(t, err, youtube.ErrInvalidMetadata)
}

func TestParseTags(t *testing.T) {
	require.Equal(t, []string{"streamlit", "youtube", "upload"}, youtube.ParseTags("streamlit,youtube,upload"))
	require.Equal(t, []string{"a", "b c"}, youtube.ParseTags(" a, ,b c,,A "))
	require.Empty(t, youtube.ParseTags(""))
}

func TestVideoMetadata_Validate(t *testing.T) {
	valid := youtube.VideoMetadata{
		Title:      "A title",
		CategoryID: "22",
		Privacy:    youtube.PrivacyPublic,
		Tags:       []string{"one", "two words"},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(m *youtube.VideoMetadata){
		"missing title":        func(m *youtube.VideoMetadata) { m.Title = "  " },
		"long title":           func(m *youtube.VideoMetadata) { m.Title = strings.Repeat("a", 101) },
		"angle brackets":       func(m *youtube.VideoMetadata) { m.Description = "<b>bold</b>" },
		"long description":     func(m *youtube.VideoMetadata) { m.Description = strings.Repeat("d", 5001) },
		"non numeric category": func(m *youtube.VideoMetadata) { m.CategoryID = "comedy" },
		"unknown privacy":      func(m *youtube.VideoMetadata) { m.Privacy = "secret" },
		"too many tags":        func(m *youtube.VideoMetadata) { m.Tags = []string{strings.Repeat("t", 501)} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := valid
			mutate(&m)
			require.ErrorIs(t, m.Validate(), youtube.ErrInvalidMetadata)
		})
	}

	t.Run("title limit counts characters", func(t *testing.T) {
		m := valid
		m.Title = strings.Repeat("é", 100)
		require.NoError(t, m.Validate())
	})
}

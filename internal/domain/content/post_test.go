package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostMeta_Normalize(t *testing.T) {
	m := PostMeta{
		Title:     "  Large Scale Vector Comparison ",
		Link:      " cosine-similarity-pt-2 ",
		Published: PublishedDate{Month: " July ", Day: " 9th", Year: 2022},
		Tags:      []string{"Python", " python", "", "NumPy"},
	}
	m.Normalize()

	assert.Equal(t, "Large Scale Vector Comparison", m.Title)
	assert.Equal(t, "cosine-similarity-pt-2", m.Link)
	assert.Equal(t, PublishedDate{Month: "July", Day: "9th", Year: 2022}, m.Published)
	assert.Equal(t, []string{"python", "numpy"}, m.Tags)
	assert.True(t, m.HasTag("NUMPY"))
	assert.False(t, m.HasTag("go"))
}

func TestPostMeta_HasTitle(t *testing.T) {
	assert.False(t, PostMeta{Title: "   "}.HasTitle())
	assert.True(t, PostMeta{Title: "D3 Tutorial"}.HasTitle())
}

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		" Machine Learning ": "machine learning",
		"CI/CD":              "ci-cd",
		`win\linux`:          "win-linux",
		"a\x00b":             "a-b",
		"..":                 "",
		".":                  "",
		"  ":                 "",
		".net":               ".net",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTag(in), in)
	}

	m := PostMeta{Tags: []string{"CI/CD", "ci-cd", "..", "Go"}}
	m.Normalize()
	assert.Equal(t, []string{"ci-cd", "go"}, m.Tags)
	assert.True(t, m.HasTag("CI/CD"))
}

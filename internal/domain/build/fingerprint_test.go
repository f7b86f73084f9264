package build

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRenderHash(t *testing.T) {
	a := Fingerprint{ContentHash: "c", ThemeHash: "t", ConfigHash: "g", RendererHash: "r"}
	b := a
	a.ComputeRenderHash()
	b.ComputeRenderHash()
	assert.Len(t, a.RenderHash, 64)
	assert.Equal(t, a.RenderHash, b.RenderHash)

	b.ContentHash = "changed"
	b.ComputeRenderHash()
	assert.NotEqual(t, a.RenderHash, b.RenderHash)
}

func TestETag(t *testing.T) {
	f := Fingerprint{RenderHash: "abc"}
	tag := f.ETag("/posts/x/", "toggle=1")
	assert.Regexp(t, `^"[0-9a-f]{32}"$`, tag)
	assert.Equal(t, tag, f.ETag("/posts/x/", "toggle=1"))
	assert.NotEqual(t, tag, f.ETag("/posts/x/", ""))
}

func TestHashStrings_Separates(t *testing.T) {
	assert.NotEqual(t, HashStrings("ab", "c"), HashStrings("a", "bc"))
}

func TestHashFS(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/home.tmpl": {Data: []byte("home")},
		"static/blog.js":      {Data: []byte("js")},
	}
	h1, err := HashFS(fsys)
	require.NoError(t, err)

	fsys["static/blog.js"] = &fstest.MapFile{Data: []byte("js2")}
	h2, err := HashFS(fsys)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

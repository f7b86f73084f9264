package build

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
)

// Fingerprint identifies one rendering of the site. Any change to posts,
// theme, site config or renderer yields a different RenderHash.
type Fingerprint struct {
	ContentHash  string
	ThemeHash    string
	ConfigHash   string
	RendererHash string
	RenderHash   string
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte(f.ThemeHash))
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte(f.RendererHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

// ETag returns a strong entity tag for one response of this rendering.
// parts distinguish responses, e.g. the path and the toggle state.
func (f Fingerprint) ETag(parts ...string) string {
	all := append([]string{f.RenderHash}, parts...)
	return `"` + HashStrings(all...)[:32] + `"`
}

// HashStrings hashes parts in order; a separator keeps ("ab","c") and
// ("a","bc") apart.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashFS hashes every regular file of fsys by path and content.
func HashFS(fsys fs.FS) (string, error) {
	h := sha256.New()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		h.Write([]byte(p))
		h.Write([]byte{0})
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"

	"inkblog/internal/domain/content"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrCorrupt marks an index entry that no longer decodes. Rebuild fixes it.
	ErrCorrupt = errors.New("index entry corrupt")
)

type ListOptions struct {
	Page int
	Size int
}

func (s *Store) GetMeta(slug string) (content.PostMeta, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.PostMeta{}, ErrNotFound
	}
	var m content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		var err error
		m, err = decodeMeta(slug, v)
		return err
	})
	return m, err
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// List returns one page of the ordered list, newest first.
func (s *Store) List(opt ListOptions) ([]content.PostMeta, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)
	var out []content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		out, err = scan(tx.Bucket(bOrder), tx.Bucket(bMeta), (opt.Page-1)*opt.Size, opt.Size)
		return err
	})
	return out, err
}

// All returns the whole ordered list.
func (s *Store) All() ([]content.PostMeta, error) {
	var out []content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		out, err = scan(tx.Bucket(bOrder), tx.Bucket(bMeta), 0, -1)
		return err
	})
	return out, err
}

// ListByTag returns one page of the posts carrying tag, in list order.
func (s *Store) ListByTag(tag string, opt ListOptions) ([]content.PostMeta, error) {
	tag = content.NormalizeTag(tag)
	if tag == "" {
		return nil, nil
	}
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxTag)
		if parent == nil {
			return nil
		}
		var err error
		out, err = scan(parent.Bucket([]byte(tag)), tx.Bucket(bMeta), (opt.Page-1)*opt.Size, opt.Size)
		return err
	})
	return out, err
}

// AllByTag returns every post carrying tag, in list order.
func (s *Store) AllByTag(tag string) ([]content.PostMeta, error) {
	tag = content.NormalizeTag(tag)
	var out []content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxTag)
		if parent == nil || tag == "" {
			return nil
		}
		var err error
		out, err = scan(parent.Bucket([]byte(tag)), tx.Bucket(bMeta), 0, -1)
		return err
	})
	return out, err
}

// scan walks an index bucket in key order, skipping skip entries and
// returning at most limit metas. A negative limit means no limit. An entry
// that does not decode fails the whole scan.
func scan(idx, metaB *bolt.Bucket, skip, limit int) ([]content.PostMeta, error) {
	if idx == nil || metaB == nil {
		return nil, nil
	}
	var out []content.PostMeta
	cur := idx.Cursor()
	for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
		if limit >= 0 && len(out) >= limit {
			break
		}
		slug := slugFromPositionKey(k)
		if slug == "" {
			continue
		}
		v := metaB.Get([]byte(slug))
		if v == nil {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		m, err := decodeMeta(slug, v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMeta(slug string, v []byte) (content.PostMeta, error) {
	var m content.PostMeta
	if err := json.Unmarshal(v, &m); err != nil {
		return m, fmt.Errorf("%w: meta %q: %v", ErrCorrupt, slug, err)
	}
	return m, nil
}

// Neighbors returns the posts right before (newer) and after (older) slug
// in the ordered list. Either may be nil.
func (s *Store) Neighbors(slug string) (newer, older *content.PostMeta, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bOrder)
		metaB := tx.Bucket(bMeta)
		if idx == nil || metaB == nil {
			return ErrNotFound
		}
		load := func(k []byte) (*content.PostMeta, error) {
			if k == nil {
				return nil, nil
			}
			key := slugFromPositionKey(k)
			v := metaB.Get([]byte(key))
			if v == nil {
				return nil, nil
			}
			m, err := decodeMeta(key, v)
			if err != nil {
				return nil, err
			}
			return &m, nil
		}

		cur := idx.Cursor()
		var prev []byte
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			if slugFromPositionKey(k) == slug {
				var err error
				if newer, err = load(prev); err != nil {
					return err
				}
				next, _ := cur.Next()
				older, err = load(next)
				return err
			}
			prev = append(prev[:0], k...)
		}
		return ErrNotFound
	})
	return newer, older, err
}

type TagCount struct {
	Name  string
	Count int
}

// Tags returns every tag with its post count, most used first.
func (s *Store) Tags() ([]TagCount, error) {
	var out []TagCount
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bIdxTag)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			sb := b.Bucket(k)
			if sb == nil {
				return nil
			}
			n := 0
			c := sb.Cursor()
			for ck, _ := c.First(); ck != nil; ck, _ = c.Next() {
				n++
			}
			out = append(out, TagCount{Name: string(k), Count: n})
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	return out, err
}

func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bInfo)
		if b == nil {
			return nil
		}
		n = decodeCount(b.Get(kCount))
		return nil
	})
	return n, err
}

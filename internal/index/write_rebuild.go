package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	bolt "go.etcd.io/bbolt"

	"inkblog/internal/domain/content"
)

// Rebuild replaces the index with posts, which must already be ordered.
// The position of each post in the slice is kept as its list position.
func (s *Store) Rebuild(ordered []content.Post) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bMeta, bOrder, bIdxTag, bInfo} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}

		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}
		orderB, err := tx.CreateBucket(bOrder)
		if err != nil {
			return err
		}
		tagB, err := tx.CreateBucket(bIdxTag)
		if err != nil {
			return err
		}
		infoB, err := tx.CreateBucket(bInfo)
		if err != nil {
			return err
		}

		pos := 0
		for _, p := range ordered {
			m := p.Meta
			if strings.TrimSpace(m.Slug) == "" {
				continue
			}
			if metaB.Get([]byte(m.Slug)) != nil {
				return fmt.Errorf("index: duplicate slug %q", m.Slug)
			}

			mb, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := metaB.Put([]byte(m.Slug), mb); err != nil {
				return err
			}

			key := makePositionKey(pos, m.Slug)
			pos++
			if err := orderB.Put(key, []byte{1}); err != nil {
				return err
			}

			for _, tag := range m.Tags {
				if tag == "" {
					continue
				}
				sb, err := tagB.CreateBucketIfNotExists([]byte(tag))
				if err != nil {
					return err
				}
				if err := sb.Put(key, []byte{1}); err != nil {
					return err
				}
			}
		}
		return infoB.Put(kCount, encodeCount(pos))
	})
}

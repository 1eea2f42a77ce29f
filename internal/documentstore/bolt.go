package documentstore

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create documents bucket")
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Get(ctx context.Context, path string) (doc []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(documentsBucket).Get([]byte(path))
		if v == nil {
			return ErrNotFound
		}
		// values are only valid for the life of the transaction
		doc = append([]byte(nil), v...)
		return nil
	})
	return doc, err
}

func (s *Bolt) Set(ctx context.Context, path string, doc []byte) error {
	if err := validPath(path); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(path), doc)
	})
}

func (s *Bolt) Remove(ctx context.Context, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Delete([]byte(path))
	})
}

func (s *Bolt) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(documentsBucket).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			out[string(k)] = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

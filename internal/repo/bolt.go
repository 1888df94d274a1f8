package repo

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var slotsBucket = []byte("slots")

type BoltRepo struct {
	DB *bolt.DB
}

func OpenBolt(path string) (*BoltRepo, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(slotsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltRepo{DB: db}, nil
}

func (r *BoltRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := r.DB.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(slotsBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction
		value, found = string(v), true
		return nil
	})
	return value, found, err
}

func (r *BoltRepo) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(slotsBucket).Put([]byte(key), []byte(value))
	})
}

func (r *BoltRepo) Close() error {
	return r.DB.Close()
}

// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// MaxHistory is how many history entries are kept; older ones are pruned.
const MaxHistory = 500

var (
	bucketSettings = []byte("settings")
	bucketHistory  = []byte("history")

	keyVolume    = "volume"
	keyEqualizer = "equalizer"
)

var ErrNotFound = errors.New("not found")

// Entry is one played track.
type Entry struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	PlayedAt    time.Time `json:"played_at"`
	DurationSec float64   `json:"duration_sec,omitempty"`
}

// Store keeps player settings and play history. With an empty path it lives
// in memory only.
type Store struct {
	db *bolt.DB

	mu       sync.Mutex
	settings map[string][]byte
	history  [][]byte
}

func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{settings: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSettings, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) SaveVolume(volume int64) error {
	return s.putSetting(keyVolume, volume)
}

// LoadVolume returns ErrNotFound if no volume was saved yet.
func (s *Store) LoadVolume() (int64, error) {
	var volume int64
	err := s.getSetting(keyVolume, &volume)
	return volume, err
}

func (s *Store) SaveEqualizer(preset string) error {
	return s.putSetting(keyEqualizer, preset)
}

func (s *Store) LoadEqualizer() (string, error) {
	var preset string
	err := s.getSetting(keyEqualizer, &preset)
	return preset, err
}

// AddHistory appends an entry, pruning the oldest beyond MaxHistory.
func (s *Store) AddHistory(e Entry) error {
	if e.PlayedAt.IsZero() {
		e.PlayedAt = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.history = append(s.history, data)
		if len(s.history) > MaxHistory {
			s.history = s.history[len(s.history)-MaxHistory:]
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), data); err != nil {
			return err
		}

		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for i := 0; i < len(keys)-MaxHistory; i++ {
			if err := b.Delete(keys[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) History(limit int) ([]Entry, error) {
	var raw [][]byte

	if s.db == nil {
		s.mu.Lock()
		for i := len(s.history) - 1; i >= 0; i-- {
			if limit > 0 && len(raw) >= limit {
				break
			}
			raw = append(raw, s.history[i])
		}
		s.mu.Unlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			c := tx.Bucket(bucketHistory).Cursor()
			for k, v := c.Last(); k != nil; k, v = c.Prev() {
				if limit > 0 && len(raw) >= limit {
					break
				}
				raw = append(raw, append([]byte(nil), v...))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	entries := make([]Entry, 0, len(raw))
	for _, data := range raw {
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) putSetting(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.settings[key] = data
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), data)
	})
}

func (s *Store) getSetting(key string, dest interface{}) error {
	var data []byte

	if s.db == nil {
		s.mu.Lock()
		data = s.settings[key]
		s.mu.Unlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketSettings).Get([]byte(key)); v != nil {
				data = append([]byte(nil), v...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if data == nil {
		return ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

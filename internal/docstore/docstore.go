// Package docstore stores JSON documents by collection and id in an
// embedded badger database.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Document is a JSON object. The "id" field is reserved: documents read
// from the store carry their id there, and it is never stored.
type Document map[string]any

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrEmpty is returned when storing a document with no fields.
	ErrEmpty = errors.New("document is empty")
)

// KeyError is an error indicating an invalid collection name or document id.
type KeyError struct {
	// What is "collection" or "id".
	What string
	// Key is the invalid name.
	Key string
}

func (err *KeyError) Error() string {
	if err.Key == "" {
		return err.What + " is required"
	}
	return "invalid " + err.What + " " + fmt.Sprintf("%q", err.Key) + ": must not contain /"
}

// Config configures a Store.
type Config struct {
	// Path is the database directory. It is ignored when InMemory is true.
	Path string
	// InMemory keeps all data in memory.
	InMemory bool
	// Logger receives badger's own logs. If nil, they are discarded.
	Logger *slog.Logger
}

// Store is a document store. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens a store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func checkKey(what, k string) error {
	if k == "" || strings.Contains(k, "/") {
		return &KeyError{What: what, Key: k}
	}
	return nil
}

func key(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

// Get retrieves a document.
func (s *Store) Get(collection, id string) (Document, error) {
	if err := checkKey("collection", collection); err != nil {
		return nil, err
	}
	if err := checkKey("id", id); err != nil {
		return nil, err
	}
	var doc Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

// List retrieves all documents in a collection in order of id.
func (s *Store) List(collection string) ([]Document, error) {
	if err := checkKey("collection", collection); err != nil {
		return nil, err
	}
	prefix := []byte(collection + "/")
	docs := []Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var doc Document
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}
			doc["id"] = string(item.Key()[len(prefix):])
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Add stores a new document under a generated id and returns the id.
func (s *Store) Add(collection string, doc Document) (string, error) {
	id := uuid.NewString()
	if err := s.Put(collection, id, doc, false); err != nil {
		return "", err
	}
	return id, nil
}

// Put stores a document under an id. If merge is true and the document
// exists, the fields of doc replace the same fields of the stored document
// and other fields are kept; otherwise doc replaces the stored document.
func (s *Store) Put(collection, id string, doc Document, merge bool) error {
	if err := checkKey("collection", collection); err != nil {
		return err
	}
	if err := checkKey("id", id); err != nil {
		return err
	}
	doc = strip(doc)
	if len(doc) == 0 {
		return ErrEmpty
	}
	k := key(collection, id)
	return s.db.Update(func(txn *badger.Txn) error {
		if merge {
			item, err := txn.Get(k)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				// Nothing to merge with.
			case err != nil:
				return err
			default:
				var old Document
				err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &old)
				})
				if err != nil {
					return err
				}
				for f, v := range doc {
					old[f] = v
				}
				doc = old
			}
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		return txn.Set(k, b)
	})
}

// Delete removes a document.
func (s *Store) Delete(collection, id string) error {
	if err := checkKey("collection", collection); err != nil {
		return err
	}
	if err := checkKey("id", id); err != nil {
		return err
	}
	k := key(collection, id)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(k)
	})
}

// strip copies doc without its id field.
func strip(doc Document) Document {
	r := make(Document, len(doc))
	for k, v := range doc {
		if k != "id" {
			r[k] = v
		}
	}
	return r
}

// badgerLogger adapts slog to badger's logger.
type badgerLogger struct {
	l *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.l.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

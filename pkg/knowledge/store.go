package knowledge

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"agentcrew/pkg/logger"
)

// Document is one knowledge entry.
type Document struct {
	Key     string
	Content string
}

// Store is a read-only key to document mapping, loaded once at
// startup and shared by all agents.
type Store struct {
	docs map[string]string
	keys []string // sorted, for deterministic iteration
}

// NewStore builds a store from an existing mapping.
func NewStore(docs map[string]string) *Store {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Store{docs: docs, keys: keys}
}

// LoadDir loads every regular file under root, keyed by its relative
// path without extension. A missing tree is tolerated: the store comes
// back empty with a warning only.
func LoadDir(root string) (*Store, error) {
	docs := make(map[string]string)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logger.Warnf("knowledge tree %s not found, starting with empty store", root)
		return NewStore(docs), nil
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(rel, filepath.Ext(rel))
		docs[filepath.ToSlash(key)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("knowledge store loaded, documents: %d, root: %s", len(docs), root)
	return NewStore(docs), nil
}

// Get returns a document by key.
func (s *Store) Get(key string) (string, bool) {
	doc, ok := s.docs[key]
	return doc, ok
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Match returns documents whose key contains any of the given tags,
// case-insensitive, at most limit entries in key order. Agents use
// this to pull role- and skill-relevant context into their prompts.
func (s *Store) Match(tags []string, limit int) []Document {
	if limit <= 0 || len(tags) == 0 {
		return nil
	}

	lowered := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			lowered = append(lowered, tag)
		}
	}

	var out []Document
	for _, key := range s.keys {
		lowerKey := strings.ToLower(key)
		for _, tag := range lowered {
			if strings.Contains(lowerKey, tag) {
				out = append(out, Document{Key: key, Content: s.docs[key]})
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}

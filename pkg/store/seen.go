package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
)

// SeenSet holds links already delivered in past digests. It only grows
// within a run; eviction is not implemented.
type SeenSet struct {
	links map[string]struct{}
}

// NewSeenSet creates an empty seen set
func NewSeenSet() *SeenSet {
	return &SeenSet{links: make(map[string]struct{})}
}

// Has reports whether the link was already delivered
func (s *SeenSet) Has(link string) bool {
	_, ok := s.links[link]
	return ok
}

// Add marks the link as delivered
func (s *SeenSet) Add(link string) {
	s.links[link] = struct{}{}
}

// Len returns the number of tracked links
func (s *SeenSet) Len() int {
	return len(s.links)
}

// Links returns all tracked links sorted, for stable persistence
func (s *SeenSet) Links() []string {
	res := make([]string, 0, len(s.links))
	for link := range s.links {
		res = append(res, link)
	}
	sort.Strings(res)
	return res
}

// Store persists the seen set as a JSON list of links
type Store struct {
	path string
}

// NewStore creates a store for the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted set. A missing, unreadable or corrupt file means
// no prior history and yields an empty set, never an error.
func (s *Store) Load() *SeenSet {
	set := NewSeenSet()

	data, err := os.ReadFile(s.path) //nolint:gosec // path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] can't read seen file %s: %v", s.path, err)
		}
		return set
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		log.Printf("[WARN] corrupt seen file %s, starting fresh: %v", s.path, err)
		return set
	}

	for _, link := range links {
		set.Add(link)
	}
	return set
}

// Save overwrites the persisted file with the full current set. Called once
// per run after the digest is produced, so a crash mid-run never marks
// articles as seen without delivering them.
func (s *Store) Save(set *SeenSet) error {
	data, err := json.MarshalIndent(set.Links(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen links: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write seen file %s: %w", s.path, err)
	}
	return nil
}

// Package dedup decides whether a listing candidate was already stored,
// combining a per-run in-memory set with a persistent store lookup.
package dedup

import (
	"strings"
)

// ProcessedSet holds the normalized URLs and titles seen during one run.
// It is not safe for concurrent use; each run owns its own set.
type ProcessedSet struct {
	urls   map[string]struct{}
	titles map[string]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{
		urls:   make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

// Add records both keys. Empty keys are ignored.
func (s *ProcessedSet) Add(title, url string) {
	if u := NormalizeURL(url); u != "" {
		s.urls[u] = struct{}{}
	}
	if t := NormalizeTitle(title); t != "" {
		s.titles[t] = struct{}{}
	}
}

// Contains reports whether either the URL or the title was already recorded.
func (s *ProcessedSet) Contains(title, url string) bool {
	if u := NormalizeURL(url); u != "" {
		if _, ok := s.urls[u]; ok {
			return true
		}
	}
	if t := NormalizeTitle(title); t != "" {
		if _, ok := s.titles[t]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of distinct URLs recorded.
func (s *ProcessedSet) Len() int {
	return len(s.urls)
}

// NormalizeTitle lowercases, trims and collapses internal whitespace.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// NormalizeURL lowercases and trims.
func NormalizeURL(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}

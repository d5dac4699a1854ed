package dedup

import (
	"context"
	"fmt"
)

// Store answers whether an article with the given link or title already exists.
// Implementations compare on the normalized forms produced by NormalizeURL and
// NormalizeTitle.
type Store interface {
	FindExisting(ctx context.Context, link, title string) (bool, error)
}

// Gate checks candidates against the run's ProcessedSet first and falls back
// to the store on a miss. Each normalized key reaches the store at most once
// per run.
type Gate struct {
	store   Store
	set     *ProcessedSet
	queried map[string]struct{}
}

func NewGate(store Store, set *ProcessedSet) *Gate {
	if set == nil {
		set = NewProcessedSet()
	}
	return &Gate{
		store:   store,
		set:     set,
		queried: make(map[string]struct{}),
	}
}

// IsDuplicate reports whether the candidate is already known. A confirmed
// duplicate from the store is added to the set so later candidates with the
// same key never hit the store.
func (g *Gate) IsDuplicate(ctx context.Context, title, url string) (bool, error) {
	if g.set.Contains(title, url) {
		return true, nil
	}

	key := NormalizeURL(url) + "\x00" + NormalizeTitle(title)
	if _, ok := g.queried[key]; ok {
		return false, nil
	}
	if g.store == nil {
		return false, nil
	}

	exists, err := g.store.FindExisting(ctx, url, title)
	if err != nil {
		// left unmarked so the next candidate with this key asks again
		return false, fmt.Errorf("lookup existing article: %w", err)
	}
	g.queried[key] = struct{}{}
	if exists {
		g.set.Add(title, url)
	}
	return exists, nil
}

// MarkSaved records a successfully persisted article.
func (g *Gate) MarkSaved(title, url string) {
	g.set.Add(title, url)
}

// Set exposes the underlying ProcessedSet.
func (g *Gate) Set() *ProcessedSet {
	return g.set
}

package crawler

import (
	"errors"
)

var (
	// ErrInvalidAdapter is returned when a portal adapter cannot run
	ErrInvalidAdapter = errors.New("invalid portal adapter")

	// ErrUnknownPortal is returned when no adapter is registered for a name or URL
	ErrUnknownPortal = errors.New("unknown portal")

	// ErrNoActiveKeywords is returned when a run has nothing to filter titles with
	ErrNoActiveKeywords = errors.New("no active keywords")

	// ErrDuplicateArticle is returned by an ArticleStore when the link or title already exists
	ErrDuplicateArticle = errors.New("article already exists")
)

package domain

import "time"

// Article is a single qualifying syndication entry. Link is the identity
// used for dedup; articles are immutable once constructed.
type Article struct {
	Title     string
	Link      string
	Published time.Time
}

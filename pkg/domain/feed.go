package domain

import "time"

// ParsedFeed is a normalized feed document
type ParsedFeed struct {
	Title string
	Items []ParsedItem
}

// ParsedItem is a normalized feed entry. A zero Published means the entry
// carried no resolvable publication date.
type ParsedItem struct {
	Title     string
	Link      string
	Published time.Time
}

// Package feed keeps an in-memory log of created tasks and renders it as an
// RSS 2.0 document. The log lives for the process lifetime only: it is never
// persisted, never pruned, and resets on restart.
package feed

import (
	"sync"
	"time"

	"github.com/gorilla/feeds"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
)

const (
	channelTitle       = "Task Manager Feed"
	channelDescription = "Latest tasks created"
	channelLink        = "http://localhost:8080/rss"
	itemAuthor         = "Task Manager"
)

type entry struct {
	title       string
	description string
}

// Accumulator is shared across requests; Record and Render are safe for
// concurrent use.
type Accumulator struct {
	mu      sync.Mutex
	entries []entry
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record appends a copy of the task's title and description, in call order.
// Deleting the task later does not remove its entry: the feed is a historical
// log, not a live view.
func (a *Accumulator) Record(t domain.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry{title: t.Title, description: t.Description})
}

// Render produces a fresh RSS document on every call. Item pubDate is the
// render moment, not the recording moment, so two renders of the same log
// differ in timestamps.
func (a *Accumulator) Render() (string, error) {
	a.mu.Lock()
	snapshot := make([]entry, len(a.entries))
	copy(snapshot, a.entries)
	a.mu.Unlock()

	now := time.Now()
	f := &feeds.Feed{
		Title:       channelTitle,
		Link:        &feeds.Link{Href: channelLink},
		Description: channelDescription,
		Created:     now,
	}
	for _, e := range snapshot {
		f.Items = append(f.Items, &feeds.Item{
			Title:       e.title,
			Link:        &feeds.Link{Href: channelLink},
			Description: e.description,
			Author:      &feeds.Author{Name: itemAuthor},
			Created:     now,
		})
	}
	return f.ToRss()
}

package feed

import (
	"encoding/xml"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
)

type rssDoc struct {
	Channel struct {
		Title       string    `xml:"title"`
		Description string    `xml:"description"`
		Link        string    `xml:"link"`
		Items       []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	PubDate     string `xml:"pubDate"`
}

func render(t *testing.T, a *Accumulator) rssDoc {
	t.Helper()
	out, err := a.Render()
	require.NoError(t, err)
	var doc rssDoc
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	return doc
}

func TestRender_EmptyFeed(t *testing.T) {
	doc := render(t, NewAccumulator())

	assert.Equal(t, "Task Manager Feed", doc.Channel.Title)
	assert.Equal(t, "Latest tasks created", doc.Channel.Description)
	assert.Equal(t, "http://localhost:8080/rss", doc.Channel.Link)
	assert.Empty(t, doc.Channel.Items)
}

func TestRender_SingleTask(t *testing.T) {
	a := NewAccumulator()
	a.Record(domain.Task{Title: "Test Task", Description: "Task Description", Status: "Pending"})

	doc := render(t, a)
	require.Len(t, doc.Channel.Items, 1)
	item := doc.Channel.Items[0]
	assert.Equal(t, "Test Task", item.Title)
	assert.Equal(t, "Task Description", item.Description)
	assert.Equal(t, "Task Manager", item.Author)
	assert.NotEmpty(t, item.PubDate)
}

func TestRender_RecordingOrder(t *testing.T) {
	a := NewAccumulator()
	for i := 0; i < 5; i++ {
		a.Record(domain.Task{Title: fmt.Sprintf("task-%d", i)})
	}

	doc := render(t, a)
	require.Len(t, doc.Channel.Items, 5)
	for i, item := range doc.Channel.Items {
		assert.Equal(t, fmt.Sprintf("task-%d", i), item.Title)
	}
}

func TestRender_FreshDocumentEachCall(t *testing.T) {
	a := NewAccumulator()
	a.Record(domain.Task{Title: "same log"})

	first := render(t, a)
	second := render(t, a)
	// The log is identical; only the render-time stamps may differ.
	require.Len(t, second.Channel.Items, 1)
	assert.Equal(t, first.Channel.Items[0].Title, second.Channel.Items[0].Title)
}

func TestRecord_ConcurrentAppends(t *testing.T) {
	a := NewAccumulator()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			a.Record(domain.Task{Title: fmt.Sprintf("concurrent-%d", n)})
		}(i)
	}
	wg.Wait()

	doc := render(t, a)
	assert.Len(t, doc.Channel.Items, 100)
}

package models

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EventFeedResponse is the Atom document returned by GET /events/?limit=N
type EventFeedResponse struct {
	XMLName xml.Name   `xml:"feed"`
	Updated string     `xml:"updated"`
	Entries []EventXML `xml:"entry"`
}

// EventXML mirrors an Atom <entry>. Both id and content carry URLs whose
// id=N query parameter is the useful part.
type EventXML struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	Category  struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	Content struct {
		MediaID string `xml:"media_id,attr"`
		Size    string `xml:"media_size,attr"`
		Body    string `xml:",chardata"`
	} `xml:"content"`
}

// Event is a recorded motion or alert entry.
type Event struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Published time.Time `json:"published" yaml:"published"`
	Updated   time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`
	// MediaID is the recording id, empty when the event has no clip.
	MediaID   string `json:"mediaId,omitempty" yaml:"mediaId,omitempty"`
	MediaSize int64  `json:"mediaSize,omitempty" yaml:"mediaSize,omitempty"`
}

// HasMedia reports whether a recording can be requested for the event.
func (e Event) HasMedia() bool {
	return e.MediaID != ""
}

// EventFeed is the parsed feed with its own last-update stamp.
type EventFeed struct {
	Updated time.Time `json:"updated" yaml:"updated"`
	Events  []Event   `json:"events" yaml:"events"`
}

var idParam = regexp.MustCompile(`id=(\d+)`)

// ExtractID returns the numeric id=N value embedded in a URL, or "".
func ExtractID(target string) string {
	m := idParam.FindStringSubmatch(target)
	if m == nil {
		return ""
	}
	return m[1]
}

// ToEvent normalizes the entry; unparsable timestamps are left zero.
func (x EventXML) ToEvent() Event {
	published, _ := time.Parse(time.RFC3339, x.Published)
	updated, _ := time.Parse(time.RFC3339, x.Updated)
	size, _ := strconv.ParseInt(x.Content.Size, 10, 64)
	mediaID := ExtractID(x.Content.Body)
	if mediaID == "" {
		mediaID = strings.TrimSpace(x.Content.MediaID)
	}
	return Event{
		ID:        ExtractID(x.ID),
		Title:     x.Title,
		Category:  x.Category.Term,
		Published: published,
		Updated:   updated,
		MediaID:   mediaID,
		MediaSize: size,
	}
}

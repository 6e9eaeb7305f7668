package client

import (
	"context"
	"encoding/xml"
	"strconv"
	"time"

	"bluecherry-cli/pkg/models"
)

// DefaultEventLimit matches the feed size the server returns by default.
const DefaultEventLimit = 50

// GetEvents reads the most recent entries of the event feed.
func (c *BluecherryClient) GetEvents(ctx context.Context, limit int) (models.EventFeed, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/events/")

	if err != nil {
		return models.EventFeed{}, &ConnectionError{Op: "get events", Err: err}
	}
	if err := checkStatus("get events", resp); err != nil {
		return models.EventFeed{}, err
	}

	var doc models.EventFeedResponse
	if err := xml.Unmarshal(resp.Body(), &doc); err != nil {
		return models.EventFeed{}, &ProtocolError{Op: "get events", Detail: "API response has different XML data", Err: err}
	}

	feed := models.EventFeed{Events: make([]models.Event, 0, len(doc.Entries))}
	feed.Updated, _ = time.Parse(time.RFC3339, doc.Updated)
	for _, entry := range doc.Entries {
		evt := entry.ToEvent()
		if evt.ID == "" {
			return models.EventFeed{}, &ProtocolError{Op: "get events", Detail: "entry id has no id=N parameter: " + entry.ID}
		}
		feed.Events = append(feed.Events, evt)
	}
	return feed, nil
}

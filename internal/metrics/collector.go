// Package metrics exposes the state of a Bluecherry server as Prometheus
// metrics.
package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"bluecherry-cli/internal/client"
	"bluecherry-cli/pkg/models"
)

var (
	upDesc = prometheus.NewDesc(
		"bluecherry_up", "Was the last scrape successful.", nil, nil,
	)
	scrapeDurationDesc = prometheus.NewDesc(
		"bluecherry_scrape_duration_seconds", "Time taken to scrape API.", nil, nil,
	)
	deviceCountDesc = prometheus.NewDesc(
		"bluecherry_devices_total", "Total devices grouped by status.", []string{"status"}, nil,
	)
	deviceUpDesc = prometheus.NewDesc(
		"bluecherry_device_up", "Device status is OK.", []string{"id", "name"}, nil,
	)
	eventsDesc = prometheus.NewDesc(
		"bluecherry_events_in_feed", "Number of entries in the event feed.", nil, nil,
	)
	feedAgeDesc = prometheus.NewDesc(
		"bluecherry_feed_age_seconds", "Seconds since the event feed was last updated.", nil, nil,
	)
)

// Collector scrapes one server per Prometheus collection. A scrape that
// fails with an auth error logs in again and retries once.
type Collector struct {
	Client   *client.BluecherryClient
	Login    string
	Password string
	// Timeout bounds one scrape. Zero means 30s.
	Timeout time.Duration
	Logger  zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- scrapeDurationDesc
	ch <- deviceCountDesc
	ch <- deviceUpDesc
	ch <- eventsDesc
	ch <- feedAgeDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := c.clock()
	success := 1.0

	if devices, err := c.fetchDevicesWithRetry(ctx); err == nil {
		statusCounts := make(map[string]float64)
		for _, d := range devices {
			up := 0.0
			if d.Usable() {
				up = 1.0
			}
			ch <- prometheus.MustNewConstMetric(deviceUpDesc, prometheus.GaugeValue, up, d.ID, d.DisplayName)

			st := strings.ToUpper(d.Status)
			if st == "" {
				st = "UNKNOWN"
			}
			statusCounts[st]++
		}
		for st, cnt := range statusCounts {
			ch <- prometheus.MustNewConstMetric(deviceCountDesc, prometheus.GaugeValue, cnt, st)
		}
	} else {
		success = 0.0
		c.Logger.Error().Err(err).Msg("error scraping devices")
	}

	if feed, err := c.fetchEventsWithRetry(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(eventsDesc, prometheus.GaugeValue, float64(len(feed.Events)))
		if !feed.Updated.IsZero() {
			ch <- prometheus.MustNewConstMetric(feedAgeDesc, prometheus.GaugeValue, c.clock().Sub(feed.Updated).Seconds())
		}
	} else {
		success = 0.0
		c.Logger.Error().Err(err).Msg("error scraping events")
	}

	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, success)
	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, c.clock().Sub(start).Seconds())
}

func (c *Collector) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Collector) relogin(ctx context.Context) bool {
	if _, err := c.Client.Login(ctx, c.Login, c.Password); err != nil {
		c.Logger.Warn().Err(err).Msg("re-login failed")
		return false
	}
	return true
}

func (c *Collector) fetchDevicesWithRetry(ctx context.Context) ([]models.Device, error) {
	res, err := c.Client.GetDevices(ctx)
	if err == nil {
		return res, nil
	}
	if client.IsAuthError(err) && c.relogin(ctx) {
		return c.Client.GetDevices(ctx)
	}
	return nil, err
}

func (c *Collector) fetchEventsWithRetry(ctx context.Context) (models.EventFeed, error) {
	res, err := c.Client.GetEvents(ctx, client.DefaultEventLimit)
	if err == nil {
		return res, nil
	}
	if client.IsAuthError(err) && c.relogin(ctx) {
		return c.Client.GetEvents(ctx, client.DefaultEventLimit)
	}
	return models.EventFeed{}, err
}

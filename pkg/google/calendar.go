package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/index"
)

// CalendarClient is a Google Calendar API client bound to one calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx}
}

// UpsertEvent creates the event for recordID or patches the existing one.
// The second result reports whether anything was written.
func (c *CalendarClient) UpsertEvent(ctx context.Context, recordID string, event *calendar.Event) (*calendar.Event, bool, error) {
	existing, err := c.findEvent(ctx, recordID)
	if err != nil {
		return nil, false, fmt.Errorf("error searching for event: %w", err)
	}

	if existing != nil {
		patch, err := EventNeedsUpdate(existing, event)
		if err != nil {
			return nil, false, fmt.Errorf("could not compare record with its calendar event: %w", err)
		}
		if c.index != nil {
			c.index.Set(recordID, existing.Id)
		}
		if patch == nil {
			return existing, false, nil
		}
		updated, err := c.PatchEvent(ctx, existing.Id, patch)
		if err != nil {
			return nil, false, err
		}
		return updated, true, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, false, err
	}
	if c.index != nil {
		c.index.Set(recordID, created.Id)
	}
	return created, true, nil
}

// findEvent tries the local index first and falls back to an API search.
func (c *CalendarClient) findEvent(ctx context.Context, recordID string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(recordID); eventID != "" {
			ev, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err == nil && ev.Status != "cancelled" {
				return ev, nil
			}
		}
	}
	return c.GetEventByRecordID(ctx, recordID)
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// ListEvents fetches every event ending after timeMin, following pages.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	err := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		Pages(ctx, func(page *calendar.Events) error {
			events = append(events, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events, nil
}

// GetEventByRecordID searches for the event carrying the record id in its
// private extended properties.
func (c *CalendarClient) GetEventByRecordID(ctx context.Context, recordID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", recordIDProperty, recordID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/tolist/pkg/model"
)

const (
	managedKey   = "tolist"
	managedValue = "managed"
	indexKey     = "tolist_index"
)

var errStopPaging = errors.New("stop paging")

// eventStore is the slice of the Events API the mirror needs.
type eventStore interface {
	ListManaged(ctx context.Context) ([]*calendar.Event, error)
	Insert(ctx context.Context, event *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, eventID string) error
}

type serviceEvents struct {
	srv        *calendar.Service
	calendarID string
}

func (s *serviceEvents) ListManaged(ctx context.Context) ([]*calendar.Event, error) {
	var events []*calendar.Event
	err := s.srv.Events.List(s.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", managedKey, managedValue)).
		ShowDeleted(false).
		Pages(ctx, func(page *calendar.Events) error {
			events = append(events, page.Items...)
			return nil
		})
	return events, err
}

func (s *serviceEvents) Insert(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	return s.srv.Events.Insert(s.calendarID, event).Context(ctx).Do()
}

func (s *serviceEvents) Delete(ctx context.Context, eventID string) error {
	return s.srv.Events.Delete(s.calendarID, eventID).Context(ctx).Do()
}

// CalendarClient mirrors the task list into one Google Calendar.
type CalendarClient struct {
	events eventStore
	logger *slog.Logger
}

// NewCalendarClient wraps an authenticated service bound to calendarID.
func NewCalendarClient(srv *calendar.Service, calendarID string) *CalendarClient {
	return &CalendarClient{
		events: &serviceEvents{srv: srv, calendarID: calendarID},
		logger: slog.Default(),
	}
}

// SyncResult counts what a Sync changed.
type SyncResult struct {
	Deleted int
	Created int
	Skipped int // tasks without a due date
}

// Sync replaces every event previously created by tolist with one
// all-day event per task that has a due date. Failures on single events
// are logged and collected; the sync continues past them.
func (c *CalendarClient) Sync(ctx context.Context, tasks []model.Task, today model.Date) (*SyncResult, error) {
	existing, err := c.events.ListManaged(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing managed events: %w", err)
	}

	result := &SyncResult{}
	var errs []error
	for _, event := range existing {
		if err := c.events.Delete(ctx, event.Id); err != nil {
			c.logger.Warn("error deleting event", "event", event.Id, "error", err)
			errs = append(errs, err)
			continue
		}
		result.Deleted++
	}

	for i, task := range tasks {
		event, err := ConvertTaskToEvent(task, i, today)
		if err != nil {
			result.Skipped++
			continue
		}
		if _, err := c.events.Insert(ctx, event); err != nil {
			c.logger.Warn("error creating event", "task", task.Title, "error", err)
			errs = append(errs, err)
			continue
		}
		result.Created++
	}
	return result, errors.Join(errs...)
}

// ErrNoDueDate is returned by ConvertTaskToEvent for undated tasks.
var ErrNoDueDate = errors.New("task has no due date")

// ConvertTaskToEvent builds an all-day event on the task's due date. The
// summary is prefixed with a check mark when done and "!" when overdue.
func ConvertTaskToEvent(task model.Task, index int, today model.Date) (*calendar.Event, error) {
	if !task.HasDueDate() {
		return nil, ErrNoDueDate
	}

	prefix := ""
	if task.Completed {
		prefix = "✓ "
	} else if task.DueDate.Before(today) {
		prefix = "! "
	}

	var desc strings.Builder
	if task.Description != "" {
		desc.WriteString(task.Description)
		desc.WriteString("\n\n")
	}
	fmt.Fprintf(&desc, "Priority: %d\n", task.Priority)
	if task.Completed {
		desc.WriteString("Status: completed\n")
	} else {
		desc.WriteString("Status: pending\n")
	}

	due := task.DueDate.Time
	return &calendar.Event{
		Summary:     prefix + task.Title,
		Description: desc.String(),
		ColorId:     priorityColorID(task.Priority),
		Start:       &calendar.EventDateTime{Date: due.Format(model.DateLayout)},
		End:         &calendar.EventDateTime{Date: due.AddDate(0, 0, 1).Format(model.DateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				managedKey: managedValue,
				indexKey:   strconv.Itoa(index),
			},
		},
	}, nil
}

// priorityColorID maps priority 1..5 onto Google Calendar event colours,
// from tomato down to graphite.
func priorityColorID(priority int) string {
	switch {
	case priority <= 1:
		return "11"
	case priority == 2:
		return "6"
	case priority == 3:
		return "5"
	case priority == 4:
		return "2"
	default:
		return "8"
	}
}

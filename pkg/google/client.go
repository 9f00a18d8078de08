package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/tolist/pkg/auth"
	"github.com/harrisonrobin/tolist/pkg/index"
)

// NewClient authenticates and returns a client for the calendar whose
// summary equals calendarName.
func NewClient(ctx context.Context, calendarName string) (*CalendarClient, error) {
	httpClient, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := resolveCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID), nil
}

// resolveCalendarID consults the calendar index before paging through the
// calendar list. A stale entry is confirmed with one Calendars.Get; if that
// fails the name is looked up again.
func resolveCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	idx, err := index.NewCalendarIndex()
	if err != nil {
		slog.Warn("calendar index unavailable", "error", err)
		return findCalendarID(ctx, srv, calendarName)
	}
	defer func() {
		if err := idx.Save(); err != nil {
			slog.Warn("failed to save calendar index", "error", err)
		}
	}()

	now := time.Now()
	if cached, fresh := idx.Lookup(calendarName, now); cached != "" {
		if fresh {
			return cached, nil
		}
		if _, err := srv.Calendars.Get(cached).Context(ctx).Do(); err == nil {
			idx.Verified(calendarName, cached, now)
			return cached, nil
		}
		slog.Debug("cached calendar ID is stale", "calendar", calendarName, "id", cached)
		idx.Forget(calendarName)
	}

	calendarID, err := findCalendarID(ctx, srv, calendarName)
	if err != nil {
		return "", err
	}
	idx.Verified(calendarName, calendarID, now)
	return calendarID, nil
}

func findCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	var calendarID string
	err := srv.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			if item.Summary == calendarName {
				calendarID = item.Id
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && err != errStopPaging {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	if calendarID == "" {
		return "", fmt.Errorf("calendar '%s' not found", calendarName)
	}
	return calendarID, nil
}

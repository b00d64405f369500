package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// CalendarService worker shift calendars
type CalendarService interface {
	// WorkerCalendar renders every assignment of the worker as an iCalendar document.
	WorkerCalendar(ctx context.Context, workerID string) (string, error)
}

type calendarService struct {
	cfg    *config.BusinessConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(cfg *config.BusinessConfig, repo *repository.Repository, logger *zap.Logger, now Clock) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, logger: logger, now: now}
}

func (s *calendarService) WorkerCalendar(ctx context.Context, workerID string) (string, error) {
	emp, err := s.repo.Employee.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return "", ErrEmployeeNotFound
		}
		return "", err
	}
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return "", err
	}
	loc, err := s.cfg.Location()
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//dispetcher//shifts//EN")
	cal.SetXWRCalName(emp.FullName)
	cal.SetXWRTimezone(loc.String())

	stamp := s.now().UTC()
	for _, o := range orders {
		if !o.HasWorker(workerID) || o.Status == model.OrderStatusCancelled {
			continue
		}
		a := o.AssignmentsDetail[workerID]
		if a == nil {
			continue
		}
		start, end, ok := shiftBounds(o.Datetime, a, loc)
		if !ok {
			continue
		}

		ev := cal.AddEvent(fmt.Sprintf("%s-%s@dispetcher", o.ID, workerID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(o.ClientName)
		ev.SetLocation(o.Address)
		if a.IsConfirmed {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			ev.SetStatus(ics.ObjectStatusTentative)
		}
		if o.Description != nil {
			ev.SetDescription(*o.Description)
		}
	}

	return cal.Serialize(), nil
}

// shiftBounds uses the actual times when recorded and the planned HH:MM on
// the order's day otherwise. A planned end before the start rolls over midnight.
func shiftBounds(datetime string, a *model.Assignment, loc *time.Location) (time.Time, time.Time, bool) {
	if a.ActualStart != nil && a.ActualEnd != nil {
		start, errS := model.ParseTime(*a.ActualStart, loc)
		end, errE := model.ParseTime(*a.ActualEnd, loc)
		if errS == nil && errE == nil && end.After(start) {
			return start, end, true
		}
	}

	day, err := model.ParseTime(datetime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day = day.In(loc)
	start, ok := atClock(day, a.StartTime, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := atClock(day, a.EndTime, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

func atClock(day time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

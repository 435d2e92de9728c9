package service

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cafe-ordering/internal/domain"
)

// NextWindow is the earliest upcoming opening of a schedule.
type NextWindow struct {
	Schedule domain.MenuSchedule `json:"schedule"`
	StartsAt time.Time           `json:"startsAt"`
}

type ItemView struct {
	domain.MenuItem
	IsCurrentlyAvailable  bool                 `json:"isCurrentlyAvailable"`
	CurrentSchedule       *domain.MenuSchedule `json:"currentSchedule,omitempty"`
	NextAvailableSchedule *NextWindow          `json:"nextAvailableSchedule,omitempty"`
}

// clock parses "HH:MM" into minutes since midnight.
func clock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func onDay(s domain.MenuSchedule, wd time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if d == int(wd) {
			return true
		}
	}
	return false
}

// IsCurrent reports whether now (already in the tenant's zone) falls in [start, end) on a listed weekday.
func IsCurrent(s domain.MenuSchedule, now time.Time) bool {
	if !s.IsActive || !onDay(s, now.Weekday()) {
		return false
	}
	start, err := clock(s.StartTime)
	if err != nil {
		return false
	}
	end, err := clock(s.EndTime)
	if err != nil {
		return false
	}
	tod := now.Hour()*60 + now.Minute()
	return tod >= start && tod < end
}

// NextStart returns the first opening at or after now within the coming week.
func NextStart(s domain.MenuSchedule, now time.Time) (time.Time, bool) {
	if !s.IsActive {
		return time.Time{}, false
	}
	start, err := clock(s.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	y, mo, d := now.Date()
	for i := 0; i <= 7; i++ {
		at := time.Date(y, mo, d+i, start/60, start%60, 0, 0, now.Location())
		if onDay(s, at.Weekday()) && !at.Before(now) {
			return at, true
		}
	}
	return time.Time{}, false
}

// Resolve annotates items with availability at now and orders them for display.
func Resolve(items []domain.MenuItem, schedules []domain.MenuSchedule, now time.Time, locale string) []ItemView {
	byID := make(map[string]domain.MenuSchedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}

	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		v := ItemView{MenuItem: it}

		var own []domain.MenuSchedule
		for _, id := range it.ScheduleIDs {
			if s, ok := byID[id]; ok {
				own = append(own, s)
			}
		}

		switch {
		case !it.IsAvailable:
		case len(own) == 0:
			v.IsCurrentlyAvailable = true
		default:
			for i := range own {
				if IsCurrent(own[i], now) {
					cur := own[i]
					v.CurrentSchedule = &cur
					v.IsCurrentlyAvailable = true
					break
				}
			}
			if !v.IsCurrentlyAvailable {
				for _, s := range own {
					at, ok := NextStart(s, now)
					if ok && (v.NextAvailableSchedule == nil || at.Before(v.NextAvailableSchedule.StartsAt)) {
						v.NextAvailableSchedule = &NextWindow{Schedule: s, StartsAt: at}
					}
				}
			}
		}
		out = append(out, v)
	}

	sortItems(out, locale)
	return out
}

func sortItems(items []ItemView, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	col := collate.New(tag)

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsCurrentlyAvailable != b.IsCurrentlyAvailable {
			return a.IsCurrentlyAvailable
		}
		if c := col.CompareString(a.Category, b.Category); c != 0 {
			return c < 0
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}

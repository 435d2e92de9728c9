package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/domain"
)

var lunch = domain.MenuSchedule{
	ID: "lunch", Name: "Lunch", StartTime: "11:00", EndTime: "15:00",
	DaysOfWeek: []int{1, 2, 3, 4, 5}, IsActive: true,
}

// 2024-05-06 is a Monday.
func at(day, hour, min int) time.Time {
	return time.Date(2024, 5, day, hour, min, 0, 0, time.UTC)
}

func TestIsCurrent(t *testing.T) {
	assert.True(t, IsCurrent(lunch, at(6, 12, 0)))
	assert.True(t, IsCurrent(lunch, at(6, 11, 0)))
	assert.True(t, IsCurrent(lunch, at(6, 14, 59)))
	assert.False(t, IsCurrent(lunch, at(6, 15, 0)))
	assert.False(t, IsCurrent(lunch, at(6, 10, 59)))
	assert.False(t, IsCurrent(lunch, at(5, 12, 0)), "sunday")

	off := lunch
	off.IsActive = false
	assert.False(t, IsCurrent(off, at(6, 12, 0)))

	broken := lunch
	broken.StartTime = "eleven"
	assert.False(t, IsCurrent(broken, at(6, 12, 0)))
}

func TestNextStart(t *testing.T) {
	next, ok := NextStart(lunch, at(6, 20, 0))
	require.True(t, ok)
	assert.Equal(t, at(7, 11, 0), next)

	next, ok = NextStart(lunch, at(10, 16, 0))
	require.True(t, ok)
	assert.Equal(t, at(13, 11, 0), next, "friday evening rolls to monday")

	next, ok = NextStart(lunch, at(6, 11, 0))
	require.True(t, ok)
	assert.Equal(t, at(6, 11, 0), next, "start instant counts")

	weekly := lunch
	weekly.DaysOfWeek = []int{1}
	next, ok = NextStart(weekly, at(6, 11, 1))
	require.True(t, ok)
	assert.Equal(t, at(13, 11, 0), next)

	weekly.DaysOfWeek = nil
	_, ok = NextStart(weekly, at(6, 9, 0))
	assert.False(t, ok)
}

func TestResolve_LunchWindow(t *testing.T) {
	items := []domain.MenuItem{{ID: "soup", Name: "Soup", Category: "Mains", IsAvailable: true, ScheduleIDs: []string{"lunch"}}}

	got := Resolve(items, []domain.MenuSchedule{lunch}, at(6, 12, 0), "en")
	require.Len(t, got, 1)
	assert.True(t, got[0].IsCurrentlyAvailable)
	require.NotNil(t, got[0].CurrentSchedule)
	assert.Equal(t, "lunch", got[0].CurrentSchedule.ID)
	assert.Nil(t, got[0].NextAvailableSchedule)

	got = Resolve(items, []domain.MenuSchedule{lunch}, at(6, 20, 0), "en")
	assert.False(t, got[0].IsCurrentlyAvailable)
	assert.Nil(t, got[0].CurrentSchedule)
	require.NotNil(t, got[0].NextAvailableSchedule)
	assert.Equal(t, "lunch", got[0].NextAvailableSchedule.Schedule.ID)
	assert.Equal(t, at(7, 11, 0), got[0].NextAvailableSchedule.StartsAt)
}

func TestResolve_PicksEarliestNext(t *testing.T) {
	dinner := domain.MenuSchedule{ID: "dinner", StartTime: "18:00", EndTime: "22:00", DaysOfWeek: []int{1}, IsActive: true}
	items := []domain.MenuItem{{ID: "x", Name: "X", IsAvailable: true, ScheduleIDs: []string{"lunch", "dinner", "ghost"}}}

	got := Resolve(items, []domain.MenuSchedule{lunch, dinner}, at(6, 16, 0), "en")
	require.NotNil(t, got[0].NextAvailableSchedule)
	assert.Equal(t, "dinner", got[0].NextAvailableSchedule.Schedule.ID)
	assert.Equal(t, at(6, 18, 0), got[0].NextAvailableSchedule.StartsAt)
}

func TestResolve_AvailabilityRules(t *testing.T) {
	items := []domain.MenuItem{
		{ID: "plain", Name: "Plain", IsAvailable: true},
		{ID: "ghost", Name: "Ghost", IsAvailable: true, ScheduleIDs: []string{"missing"}},
		{ID: "off", Name: "Off", IsAvailable: false},
		{ID: "offLunch", Name: "Off lunch", IsAvailable: false, ScheduleIDs: []string{"lunch"}},
	}
	got := Resolve(items, []domain.MenuSchedule{lunch}, at(6, 12, 0), "en")

	avail := map[string]bool{}
	for _, v := range got {
		avail[v.ID] = v.IsCurrentlyAvailable
	}
	assert.Equal(t, map[string]bool{"plain": true, "ghost": true, "off": false, "offLunch": false}, avail)
}

func TestResolve_SortOrder(t *testing.T) {
	items := []domain.MenuItem{
		{ID: "1", Name: "Tiramisu", Category: "Desserts", IsAvailable: true},
		{ID: "2", Name: "Banana split", Category: "Desserts", IsAvailable: true},
		{ID: "3", Name: "apple pie", Category: "Desserts", IsAvailable: true},
		{ID: "4", Name: "Borscht", Category: "Soups", IsAvailable: false},
		{ID: "5", Name: "Zucchini", Category: "Appetizers", IsAvailable: true},
	}
	got := Resolve(items, nil, at(6, 12, 0), "en")

	var names []string
	for _, v := range got {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"Zucchini", "apple pie", "Banana split", "Tiramisu", "Borscht"}, names)
}

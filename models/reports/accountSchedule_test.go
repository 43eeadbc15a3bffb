package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func scheduleItem(no string, original, cleared int64) *ScheduleItem {
	o := decimal.NewFromInt(original)
	c := decimal.NewFromInt(cleared)
	return &ScheduleItem{
		TransactionNo:   no,
		OriginalAmount:  o,
		ClearedAmount:   c,
		UnclearedAmount: o.Sub(c),
	}
}

func TestAppendScheduleItem_AccumulatesTotals(t *testing.T) {
	schedule := &AccountSchedule{Items: []*ScheduleItem{}}

	appendScheduleItem(schedule, scheduleItem("IN00001", 1000, 400))
	appendScheduleItem(schedule, scheduleItem("IN00002", 500, 0))

	require.Len(t, schedule.Items, 2)
	require.True(t, schedule.TotalOriginalAmount.Equal(decimal.NewFromInt(1500)))
	require.True(t, schedule.TotalClearedAmount.Equal(decimal.NewFromInt(400)))
	require.True(t, schedule.TotalUnclearedAmount.Equal(decimal.NewFromInt(1100)))
}

func TestAppendScheduleItem_SkipsFullyCleared(t *testing.T) {
	schedule := &AccountSchedule{Items: []*ScheduleItem{}}

	appendScheduleItem(schedule, scheduleItem("IN00001", 1000, 1000))

	require.Empty(t, schedule.Items)
	require.True(t, schedule.TotalOriginalAmount.IsZero())
}

func TestDueDays(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 0, dueDays(from, from))
	require.Equal(t, 30, dueDays(from, from.AddDate(0, 0, 30)))
	// End dates before the document date never go negative.
	require.Equal(t, 0, dueDays(from, from.AddDate(0, 0, -5)))
}

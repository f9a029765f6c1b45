package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecomposeDate(t *testing.T) {
	cases := []struct {
		name  string
		ts    time.Time
		year  int
		month int
		week  int
		day   int
	}{
		{
			name: "first day of month",
			// 2026-03-01 is a Sunday
			ts:    time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
			year:  2026,
			month: 2,
			week:  0,
			day:   0,
		},
		{
			name:  "mid month",
			ts:    time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC),
			year:  2026,
			month: 2,
			week:  2,
			day:   3,
		},
		{
			name: "last day of long month",
			// 2026-01-31 is a Saturday; January 2026 starts on a Thursday
			ts:    time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC),
			year:  2026,
			month: 0,
			week:  4,
			day:   6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			year, month, week, day := DecomposeDate(tc.ts)
			assert.Equal(t, tc.year, year)
			assert.Equal(t, tc.month, month)
			assert.Equal(t, tc.week, week)
			assert.Equal(t, tc.day, day)
		})
	}
}

func TestSetClosedPopulatesAllParts(t *testing.T) {
	var ticket Ticket
	ts := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	ticket.SetClosed(ts)

	assert.NotNil(t, ticket.DateClosed)
	assert.NotNil(t, ticket.ClosedYear)
	assert.NotNil(t, ticket.ClosedMonth)
	assert.NotNil(t, ticket.ClosedWeek)
	assert.NotNil(t, ticket.ClosedDay)
	assert.Equal(t, 3, *ticket.ClosedMonth)
}

func TestTransformHidesInternalFields(t *testing.T) {
	ticket := Ticket{
		ID:              "t1",
		Title:           "Broken projector",
		Type:            ComplainantStudent,
		Category:        "Stu2",
		Content:         "x",
		Status:          DefaultTicketStatus,
		SeverityLevel:   DefaultSeverityLevel,
		EmailOptionType: DefaultEmailOption,
	}
	ticket.SetSubmitted(time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC))

	view := ticket.Transform()
	assert.Equal(t, "t1", view.ID)
	assert.Equal(t, 2026, view.DateSubmitted.Year)
	assert.Nil(t, view.DateClosed)
	assert.Nil(t, view.Report)
	assert.Equal(t, DefaultEmailOption, view.EmailOption.Type)
}

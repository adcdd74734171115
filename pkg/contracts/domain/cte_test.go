package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRangeContains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local),
		End:   time.Date(2024, 3, 10, 0, 1, 0, 0, time.Local),
	}

	// Boundary days count regardless of time-of-day.
	assert.True(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, r.Contains(time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)))
	assert.True(t, r.Contains(time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)))
}

func TestDateRangeOpenBounds(t *testing.T) {
	startOnly := DateRange{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)}
	assert.True(t, startOnly.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, startOnly.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)))
	assert.False(t, startOnly.Contains(time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local)))

	endOnly := DateRange{End: time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)}
	assert.True(t, endOnly.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, endOnly.Contains(time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)))
	assert.False(t, endOnly.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)))
}

func TestDateRangeIsZero(t *testing.T) {
	assert.True(t, DateRange{}.IsZero())
	assert.False(t, DateRange{Start: time.Now()}.IsZero())
	assert.False(t, DateRange{End: time.Now()}.IsZero())
}

func TestFixedDaysClamped(t *testing.T) {
	assert.Equal(t, FixedDays{Total: 1, Elapsed: 1}, FixedDays{}.Clamped())
	assert.Equal(t, FixedDays{Total: 21, Elapsed: 1}, FixedDays{Total: 21, Elapsed: -3}.Clamped())
	assert.Equal(t, FixedDays{Total: 21, Elapsed: 5}, FixedDays{Total: 21, Elapsed: 5}.Clamped())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 5, 0, 0, 1, 0, time.Local)
	b := time.Date(2024, 3, 5, 23, 59, 0, 0, time.Local)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, b.AddDate(0, 0, 1)))
}

func TestCtePresence(t *testing.T) {
	c := Cte{CollectionUnit: "MATRIZ"}
	assert.True(t, c.HasCollectionUnit())
	assert.False(t, c.HasDeliveryUnit())
	assert.False(t, c.HasSLADeadline())

	c.SLADeadline = time.Now()
	assert.True(t, c.HasSLADeadline())
}

func TestUserIsManager(t *testing.T) {
	assert.True(t, User{Username: "admin"}.IsManager())
	assert.False(t, User{Username: "sul", Unit: "FILIAL SUL"}.IsManager())
}

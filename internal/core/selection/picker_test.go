package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/selection"
)

func at(h int) domain.TimeOfDay {
	return domain.NewTimeOfDay(h, 0, 0)
}

// 08-09, 09-10, 10-11 free; 11-12 booked; 12-13, 13-14 free
func daySlots() []domain.TimeSlot {
	var slots []domain.TimeSlot
	for h := 8; h < 14; h++ {
		slots = append(slots, domain.TimeSlot{StartTime: at(h), EndTime: at(h + 1), IsAvailable: h != 11})
	}
	return slots
}

func TestPicker_RangeWithinChain(t *testing.T) {
	p := selection.NewPicker(daySlots(), false)

	p.Click(at(8))
	assert.Equal(t, selection.RangeStart, p.State())
	require.Len(t, p.Selection(), 1)

	p.Click(at(10))
	assert.Equal(t, selection.Idle, p.State())
	require.Len(t, p.Selection(), 3)

	iv, ok := p.Interval()
	require.True(t, ok)
	assert.Equal(t, "08:00:00-11:00:00", iv.String())
}

func TestPicker_TargetPastUnavailableStartsNewRange(t *testing.T) {
	p := selection.NewPicker(daySlots(), false)

	p.Click(at(9))
	p.Click(at(12))

	assert.Equal(t, selection.RangeStart, p.State())
	sel := p.Selection()
	require.Len(t, sel, 1)
	assert.Equal(t, at(12), sel[0].StartTime)

	p.Click(at(13))
	iv, _ := p.Interval()
	assert.Equal(t, "12:00:00-14:00:00", iv.String())
}

func TestPicker_UnavailableClickIsNoop(t *testing.T) {
	p := selection.NewPicker(daySlots(), false)
	p.Click(at(11))
	assert.Equal(t, selection.Idle, p.State())
	assert.Empty(t, p.Selection())

	p.Click(at(8))
	p.Click(at(11))
	assert.Equal(t, selection.RangeStart, p.State())
	assert.Len(t, p.Selection(), 1)
}

func TestPicker_ReclickStartDeselects(t *testing.T) {
	p := selection.NewPicker(daySlots(), false)
	p.Click(at(9))
	p.Click(at(9))
	assert.Equal(t, selection.Idle, p.State())
	assert.Empty(t, p.Selection())

	p.Click(at(8))
	p.Click(at(10))
	p.Click(at(8))
	assert.Empty(t, p.Selection(), "clicking a committed range's start clears it")
}

func TestPicker_EarlierSlotRestarts(t *testing.T) {
	p := selection.NewPicker(daySlots(), false)
	p.Click(at(10))
	p.Click(at(8))
	assert.Equal(t, selection.RangeStart, p.State())
	assert.Equal(t, at(8), p.Selection()[0].StartTime)
}

func TestPicker_NonAdjacentBreaksChain(t *testing.T) {
	slots := []domain.TimeSlot{
		{StartTime: at(8), EndTime: at(9), IsAvailable: true},
		{StartTime: at(10), EndTime: at(11), IsAvailable: true},
	}
	p := selection.NewPicker(slots, false)
	p.Click(at(8))
	p.Click(at(10))
	assert.Equal(t, selection.RangeStart, p.State())
	assert.Equal(t, at(10), p.Selection()[0].StartTime)
}

func TestPicker_SingleSlotOnly(t *testing.T) {
	p := selection.NewPicker(daySlots(), true)

	p.Click(at(8))
	p.Click(at(10))
	sel := p.Selection()
	require.Len(t, sel, 1)
	assert.Equal(t, at(10), sel[0].StartTime)

	p.Click(at(10))
	assert.Empty(t, p.Selection())
}

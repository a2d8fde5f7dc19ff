// Package selection implements contiguous time-slot range selection over a
// day's slot list. It holds UI state only; bookings are still validated when
// they are created.
package selection

import "github.com/turf45/courtbook/internal/core/domain"

type State int

const (
	Idle State = iota
	RangeStart
)

func (s State) String() string {
	if s == RangeStart {
		return "range-start"
	}
	return "idle"
}

type Picker struct {
	slots      []domain.TimeSlot
	singleOnly bool
	state      State
	start      int
	selection  []domain.TimeSlot
}

// NewPicker builds a picker over slots, which must be ordered by start time.
func NewPicker(slots []domain.TimeSlot, singleSlotOnly bool) *Picker {
	return &Picker{
		slots:      slots,
		singleOnly: singleSlotOnly,
		start:      -1,
	}
}

func (p *Picker) State() State {
	return p.state
}

// Selection returns a copy of the current selection.
func (p *Picker) Selection() []domain.TimeSlot {
	out := make([]domain.TimeSlot, len(p.selection))
	copy(out, p.selection)
	return out
}

// Interval returns the span of the current selection.
func (p *Picker) Interval() (domain.Interval, bool) {
	if len(p.selection) == 0 {
		return domain.Interval{}, false
	}
	return domain.Interval{
		Start: p.selection[0].StartTime,
		End:   p.selection[len(p.selection)-1].EndTime,
	}, true
}

func (p *Picker) Reset() {
	p.state = Idle
	p.start = -1
	p.selection = nil
}

// Click applies a click on the slot starting at start. Clicks on unknown or
// unavailable slots are ignored.
func (p *Picker) Click(start domain.TimeOfDay) {
	idx := p.indexOf(start)
	if idx < 0 || !p.slots[idx].IsAvailable {
		return
	}

	if p.singleOnly {
		if len(p.selection) == 1 && p.selection[0].StartTime == start {
			p.Reset()
			return
		}
		p.selection = []domain.TimeSlot{p.slots[idx]}
		p.start = idx
		p.state = Idle
		return
	}

	// clicking the start of the current selection deselects it
	if len(p.selection) > 0 && p.selection[0].StartTime == start {
		p.Reset()
		return
	}

	if p.state == Idle {
		p.begin(idx)
		return
	}

	chain := p.chainFrom(p.start)
	for i, slotIdx := range chain {
		if slotIdx == idx {
			p.selection = p.selection[:0]
			for _, c := range chain[:i+1] {
				p.selection = append(p.selection, p.slots[c])
			}
			p.state = Idle
			return
		}
	}

	p.begin(idx)
}

func (p *Picker) begin(idx int) {
	p.state = RangeStart
	p.start = idx
	p.selection = []domain.TimeSlot{p.slots[idx]}
}

// chainFrom returns the indexes of the maximal run of available slots
// starting at from where each slot ends exactly where the next begins.
func (p *Picker) chainFrom(from int) []int {
	chain := []int{from}
	for i := from + 1; i < len(p.slots); i++ {
		prev := p.slots[i-1]
		cur := p.slots[i]
		if !cur.IsAvailable || prev.EndTime != cur.StartTime {
			break
		}
		chain = append(chain, i)
	}
	return chain
}

func (p *Picker) indexOf(start domain.TimeOfDay) int {
	for i, s := range p.slots {
		if s.StartTime == start {
			return i
		}
	}
	return -1
}

package deck

import "github.com/youruser/swuproxy/internal/cards"

// Slot names double as the print sheet file names.
const (
	SlotLeader       = "leader"
	SlotSecondLeader = "secondLeader"
	SlotBase         = "base"
)

// Entry is one line of the main deck list.
type Entry struct {
	Card  cards.ImageRef `json:"card"`
	Count int            `json:"count"`
}

// Descriptor is the resolved content of a deck. It is never mutated after
// Resolve returns it.
type Descriptor struct {
	ID           ID             `json:"id"`
	Name         string         `json:"name,omitempty"`
	Leader       cards.ImageRef `json:"leader,omitempty"`
	SecondLeader cards.ImageRef `json:"second_leader,omitempty"`
	Base         cards.ImageRef `json:"base"`
	Entries      []Entry        `json:"entries"`
}

// LeaderSlot pairs a slot name with its front image.
type LeaderSlot struct {
	Name  string
	Front cards.ImageRef
}

// Leaders returns the filled leader slots in print order.
func (d *Descriptor) Leaders() []LeaderSlot {
	var out []LeaderSlot
	if !d.Leader.Empty() {
		out = append(out, LeaderSlot{Name: SlotLeader, Front: d.Leader})
	}
	if !d.SecondLeader.Empty() {
		out = append(out, LeaderSlot{Name: SlotSecondLeader, Front: d.SecondLeader})
	}
	return out
}

// CardCount is the total number of main deck copies.
func (d *Descriptor) CardCount() int {
	n := 0
	for _, e := range d.Entries {
		n += e.Count
	}
	return n
}

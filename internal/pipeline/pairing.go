package pipeline

import "fmt"

// emitFunc writes one sheet from two card images.
type emitFunc func(name string, first, second []byte) error

// pairer is the FIFO pairing buffer for main deck cards. Every two queued
// images become one sheet named deck_<n>; Flush prints a leftover image next
// to itself so no card is dropped.
type pairer struct {
	pending [][]byte
	next    int
	emit    emitFunc
}

func newPairer(emit emitFunc) *pairer {
	return &pairer{pending: make([][]byte, 0, 2), next: 1, emit: emit}
}

func (p *pairer) Add(img []byte) error {
	p.pending = append(p.pending, img)
	if len(p.pending) < 2 {
		return nil
	}
	return p.print(p.pending[0], p.pending[1])
}

func (p *pairer) Flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	return p.print(p.pending[0], p.pending[0])
}

// Sheets is the number of sheets emitted so far.
func (p *pairer) Sheets() int { return p.next - 1 }

func (p *pairer) print(first, second []byte) error {
	name := fmt.Sprintf("deck_%d", p.next)
	p.pending = p.pending[:0]
	p.next++
	return p.emit(name, first, second)
}

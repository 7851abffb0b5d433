package deck

import (
	"fmt"
	"path"
	"strings"

	"github.com/youruser/swuproxy/internal/cards"
)

// ExportDeckText renders the deck as a plain count-per-line list in deck
// order. Cards are named by their set and number taken from the image path.
func ExportDeckText(d *Descriptor) string {
	lines := []string{}
	if d.Name != "" {
		lines = append(lines, "# "+d.Name)
	}
	for _, l := range d.Leaders() {
		lines = append(lines, "1x "+cardLabel(l.Front)+" ("+l.Name+")")
	}
	if !d.Base.Empty() {
		lines = append(lines, "1x "+cardLabel(d.Base)+" (base)")
	}
	for _, e := range d.Entries {
		lines = append(lines, fmt.Sprintf("%dx %s", e.Count, cardLabel(e.Card)))
	}
	return strings.Join(lines, "\n")
}

// cardLabel turns "/cards/SOR/005.png" into "SOR 005".
func cardLabel(r cards.ImageRef) string {
	p := cards.Sanitize(r)
	dir, file := path.Split(p)
	stem := strings.TrimSuffix(file, path.Ext(file))
	set := path.Base(strings.TrimRight(dir, "/"))
	if set == "." || set == "/" || set == "" {
		return stem
	}
	return set + " " + stem
}

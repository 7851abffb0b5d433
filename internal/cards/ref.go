package cards

import (
	"path"
	"strings"
)

// Filename suffixes used by swudb for the alternate faces of double-sided
// leaders and bases.
const (
	BackSuffix     = "-back"
	PortraitSuffix = "-portrait"
)

// ImageRef is a card artwork path fragment as served by the image CDN,
// e.g. "/cards/SOR/005.png".
type ImageRef string

func (r ImageRef) String() string { return string(r) }

// Empty reports whether the reference carries no path.
func (r ImageRef) Empty() bool { return strings.TrimSpace(string(r)) == "" }

// Back is the path of the reverse face.
func (r ImageRef) Back() ImageRef { return WithSuffix(r, BackSuffix) }

// Portrait is the path of the portrait-oriented alternate art.
func (r ImageRef) Portrait() ImageRef { return WithSuffix(r, PortraitSuffix) }

// Alternates lists the reverse-face candidates in the order they should be
// tried.
func (r ImageRef) Alternates() []ImageRef {
	return []ImageRef{r.Back(), r.Portrait()}
}

// WithSuffix inserts suffix between the file stem and its extension:
// "/cards/SOR/005.png" becomes "/cards/SOR/005-back.png". A name without an
// extension gets the suffix appended. Only the last path segment is touched.
func WithSuffix(r ImageRef, suffix string) ImageRef {
	p := string(r)
	dir, file := path.Split(p)
	ext := path.Ext(file)
	if ext == file {
		// dotfile such as ".png": treat the whole name as the stem
		ext = ""
	}
	stem := strings.TrimSuffix(file, ext)
	return ImageRef(dir + stem + suffix + ext)
}

// Sanitize removes characters the image CDN does not accept in paths.
func Sanitize(r ImageRef) string {
	return strings.ReplaceAll(string(r), "~", "")
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/youruser/swuproxy/internal/archive"
	"github.com/youruser/swuproxy/internal/cards"
	"github.com/youruser/swuproxy/internal/deck"
	imagepkg "github.com/youruser/swuproxy/internal/image"
	"github.com/youruser/swuproxy/internal/util"
	"github.com/youruser/swuproxy/pkg/logger"
)

const sheetExt = ".jpg"

type DeckResolver interface {
	Resolve(ctx context.Context, id deck.ID) (*deck.Descriptor, error)
}

// ImageSource returns the bytes of one card image, or false when the image
// could not be obtained.
type ImageSource interface {
	Fetch(ctx context.Context, ref cards.ImageRef) ([]byte, bool)
}

// ComposeFunc writes one print sheet to dst.
type ComposeFunc func(dst string, first, second []byte, rotateFirst bool) error

type Options struct {
	Validator  deck.Validator
	ScratchDir string
	ArchiveDir string
	// Compose defaults to imagepkg.WritePrintSheet.
	Compose ComposeFunc
}

// Pipeline turns a deck identifier into a ZIP of print sheets. It holds no
// per-request state and may be shared between concurrent requests.
type Pipeline struct {
	validator  deck.Validator
	resolver   DeckResolver
	images     ImageSource
	scratchDir string
	archiveDir string
	compose    ComposeFunc
	log        *logger.Logger
}

func New(resolver DeckResolver, images ImageSource, opts Options, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	compose := opts.Compose
	if compose == nil {
		compose = imagepkg.WritePrintSheet
	}
	return &Pipeline{
		validator:  opts.Validator,
		resolver:   resolver,
		images:     images,
		scratchDir: opts.ScratchDir,
		archiveDir: opts.ArchiveDir,
		compose:    compose,
		log:        log,
	}
}

// Validate normalizes raw user input without touching the network.
func (p *Pipeline) Validate(raw string) (deck.ID, error) {
	return p.validator.Normalize(raw)
}

// ProcessDeck resolves the deck named by raw, renders its print sheets and
// returns the path of the resulting archive. The caller owns the archive.
// The scratch directory is removed on every return path.
func (p *Pipeline) ProcessDeck(ctx context.Context, raw string) (string, error) {
	id, err := p.validator.Normalize(raw)
	if err != nil {
		return "", err
	}

	d, err := p.resolver.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	workDir := filepath.Join(p.scratchDir, fmt.Sprintf("%s-%s", id, runID))
	if err := util.EnsureDir(workDir); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			p.log.Warn("Could not remove scratch directory %s: %v", workDir, err)
		}
	}()
	if err := util.EnsureDir(p.archiveDir); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	r := &run{p: p, dir: workDir}
	r.pairs = newPairer(func(name string, first, second []byte) error {
		return r.sheet(name, first, second, false)
	})
	if err := r.render(ctx, d); err != nil {
		return "", err
	}

	dst := filepath.Join(p.archiveDir, fmt.Sprintf("%s-%s.zip", id, runID))
	if err := archive.Pack(workDir, dst); err != nil {
		return "", fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	p.log.Info("Deck %s: %d sheets (%d cards, %d skipped entries) -> %s", id, r.sheets, r.cards, r.skipped, dst)
	return dst, nil
}

// run is the state of one ProcessDeck call.
type run struct {
	p     *Pipeline
	dir   string
	pairs *pairer

	sheets  int
	cards   int
	skipped int
}

func (r *run) render(ctx context.Context, d *deck.Descriptor) error {
	log := r.p.log

	log.Debug("Getting leaders")
	for _, slot := range d.Leaders() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.leader(ctx, slot); err != nil {
			return err
		}
	}

	log.Debug("Getting base")
	if err := ctx.Err(); err != nil {
		return err
	}
	if base, ok := r.p.images.Fetch(ctx, d.Base); ok {
		if err := r.sheet(deck.SlotBase, base, base, true); err != nil {
			return err
		}
	} else {
		log.Warn("Deck %s: base image %s unavailable, skipping base sheet", d.ID, d.Base)
	}

	log.Debug("Getting deck")
	for _, e := range d.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, ok := r.p.images.Fetch(ctx, e.Card)
		if !ok {
			log.Warn("Deck %s: skipping %dx %s", d.ID, e.Count, e.Card)
			r.skipped++
			continue
		}
		for i := 0; i < e.Count; i++ {
			r.cards++
			if err := r.pairs.Add(img); err != nil {
				return err
			}
		}
	}
	return r.pairs.Flush()
}

// leader prints the front of a leader rotated next to its reverse face.
func (r *run) leader(ctx context.Context, slot deck.LeaderSlot) error {
	front, ok := r.p.images.Fetch(ctx, slot.Front)
	if !ok {
		r.p.log.Warn("%s image %s unavailable, skipping sheet", slot.Name, slot.Front)
		return nil
	}

	back, ok := r.firstPresent(ctx, slot.Front.Alternates())
	if !ok {
		r.p.log.Debug("%s has no reverse face, printing the front twice", slot.Name)
		back = front
	}
	return r.sheet(slot.Name, front, back, true)
}

// firstPresent tries refs in order and returns the first image obtained.
func (r *run) firstPresent(ctx context.Context, refs []cards.ImageRef) ([]byte, bool) {
	for _, ref := range refs {
		if img, ok := r.p.images.Fetch(ctx, ref); ok {
			return img, true
		}
	}
	return nil, false
}

func (r *run) sheet(name string, first, second []byte, rotateFirst bool) error {
	dst := filepath.Join(r.dir, name+sheetExt)
	if err := r.p.compose(dst, first, second, rotateFirst); err != nil {
		return fmt.Errorf("%w %s: %w", ErrCompositeFailed, name, err)
	}
	r.sheets++
	r.p.log.Trace("Wrote %s", dst)
	return nil
}

package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/zip"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/youruser/swuproxy/internal/cards"
	"github.com/youruser/swuproxy/internal/deck"
	"github.com/youruser/swuproxy/internal/pipeline"
	"github.com/youruser/swuproxy/pkg/logger"
)

type fakeResolver struct {
	decks map[deck.ID]*deck.Descriptor
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, id deck.ID) (*deck.Descriptor, error) {
	f.calls++
	d, ok := f.decks[id]
	if !ok {
		return nil, fmt.Errorf("%w %s: 404", deck.ErrResolveFailed, id)
	}
	return d, nil
}

type fakeImages struct {
	mu     sync.Mutex
	images map[cards.ImageRef][]byte
	calls  []cards.ImageRef
}

func (f *fakeImages) Fetch(_ context.Context, ref cards.ImageRef) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	b, ok := f.images[ref]
	return b, ok
}

type composed struct {
	name          string
	first, second string
	rotate        bool
}

// recorder stands in for the real compositor: images are plain text labels
// and every sheet is written as "first|second".
type recorder struct {
	sheets []composed
	fail   string
}

func (r *recorder) compose(dst string, first, second []byte, rotate bool) error {
	name := filepath.Base(dst)
	if name == r.fail {
		return errors.New("decode first card: unknown format")
	}
	r.sheets = append(r.sheets, composed{name, string(first), string(second), rotate})
	return os.WriteFile(dst, []byte(string(first)+"|"+string(second)), 0o644)
}

func zipNames(path string) []string {
	r, err := zip.OpenReader(path)
	Expect(err).NotTo(HaveOccurred())
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func pngBytes(c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 84))
	for y := 0; y < 84; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

func testLogger() *logger.Logger {
	l := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[pipeline-test] "),
		logger.WithFlags(0),
	)
	l.SetLevel(logger.LevelTrace)
	return l
}

var _ = Describe("Pipeline", func() {
	var (
		root       string
		scratchDir string
		archiveDir string
		resolver   *fakeResolver
		images     *fakeImages
		rec        *recorder
		p          *pipeline.Pipeline
		ctx        context.Context
	)

	const (
		leaderFront   = cards.ImageRef("~/cards/SOR/010.png")
		leaderBack    = cards.ImageRef("~/cards/SOR/010-back.png")
		leaderPortr   = cards.ImageRef("~/cards/SOR/010-portrait.png")
		secondFront   = cards.ImageRef("~/cards/SHD/007.png")
		secondBack    = cards.ImageRef("~/cards/SHD/007-back.png")
		secondPortr   = cards.ImageRef("~/cards/SHD/007-portrait.png")
		baseRef       = cards.ImageRef("~/cards/SOR/026.png")
		cardA         = cards.ImageRef("~/cards/SOR/128.png")
		cardB         = cards.ImageRef("~/cards/SOR/045.png")
		cardMissing   = cards.ImageRef("~/cards/SOR/999.png")
		validID       = "ABCDEFG"
		validIDAsURL  = "https://swudb.com/deck/ABCDEFG/"
		unknownDeckID = "Missing"
	)

	scratchEntries := func() []os.DirEntry {
		entries, err := os.ReadDir(scratchDir)
		if os.IsNotExist(err) {
			return nil
		}
		Expect(err).NotTo(HaveOccurred())
		return entries
	}

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "pipeline-test-*")
		Expect(err).NotTo(HaveOccurred())
		scratchDir = filepath.Join(root, "work")
		archiveDir = filepath.Join(root, "archives")

		resolver = &fakeResolver{decks: map[deck.ID]*deck.Descriptor{}}
		images = &fakeImages{images: map[cards.ImageRef][]byte{
			leaderFront: []byte("L"),
			leaderBack:  []byte("Lb"),
			leaderPortr: []byte("Lp"),
			secondFront: []byte("S"),
			baseRef:     []byte("B"),
			cardA:       []byte("A"),
			cardB:       []byte("Bc"),
		}}
		rec = &recorder{}
		ctx = context.Background()
	})

	JustBeforeEach(func() {
		p = pipeline.New(resolver, images, pipeline.Options{
			Validator:  deck.NewValidator(deck.AlphabetLetters, 32),
			ScratchDir: scratchDir,
			ArchiveDir: archiveDir,
			Compose:    rec.compose,
		}, testLogger())
	})

	AfterEach(func() {
		os.RemoveAll(root)
	})

	Context("with an invalid identifier", func() {
		It("fails before any network call", func() {
			_, err := p.ProcessDeck(ctx, "1234567")
			Expect(err).To(MatchError(deck.ErrInvalidIdentifier))
			Expect(resolver.calls).To(Equal(0))
			Expect(images.calls).To(BeEmpty())
		})
	})

	Context("when the deck cannot be resolved", func() {
		It("reports a resolution failure and leaves no scratch directory", func() {
			_, err := p.ProcessDeck(ctx, unknownDeckID)
			Expect(err).To(MatchError(deck.ErrResolveFailed))
			Expect(images.calls).To(BeEmpty())
			Expect(scratchEntries()).To(BeEmpty())
		})
	})

	Context("with one leader, one base and a single card", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:      validID,
				Leader:  leaderFront,
				Base:    baseRef,
				Entries: []deck.Entry{{Card: cardA, Count: 1}},
			}
		})

		It("produces exactly leader, base and deck_1 and cleans up", func() {
			path, err := p.ProcessDeck(ctx, validIDAsURL)
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Dir(path)).To(Equal(archiveDir))
			Expect(filepath.Base(path)).To(HavePrefix(validID + "-"))
			Expect(filepath.Ext(path)).To(Equal(".zip"))
			Expect(zipNames(path)).To(Equal([]string{"base.jpg", "deck_1.jpg", "leader.jpg"}))
			Expect(scratchEntries()).To(BeEmpty())
		})

		It("rotates leader and base but not deck sheets", func() {
			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.sheets).To(Equal([]composed{
				{"leader.jpg", "L", "Lb", true},
				{"base.jpg", "B", "B", true},
				{"deck_1.jpg", "A", "A", false},
			}))
		})

		It("gives every request its own archive", func() {
			first, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())
			second, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).NotTo(Equal(second))
			Expect(first).To(BeAnExistingFile())
			Expect(second).To(BeAnExistingFile())
		})
	})

	Context("leader reverse face fallback", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:           validID,
				Leader:       leaderFront,
				SecondLeader: secondFront,
				Base:         baseRef,
			}
		})

		It("uses the back, then the portrait, then the front", func() {
			delete(images.images, leaderBack)

			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.sheets[0]).To(Equal(composed{"leader.jpg", "L", "Lp", true}))
			Expect(rec.sheets[1]).To(Equal(composed{"secondLeader.jpg", "S", "S", true}))
			Expect(images.calls).To(Equal([]cards.ImageRef{
				leaderFront, leaderBack, leaderPortr,
				secondFront, secondBack, secondPortr,
				baseRef,
			}))
		})

		It("stops at the first present alternative", func() {
			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.sheets[0]).To(Equal(composed{"leader.jpg", "L", "Lb", true}))
			Expect(images.calls[:2]).To(Equal([]cards.ImageRef{leaderFront, leaderBack}))
		})

		It("skips a leader whose front is unavailable", func() {
			delete(images.images, leaderFront)

			path, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())
			Expect(zipNames(path)).To(Equal([]string{"base.jpg", "secondLeader.jpg"}))
		})
	})

	Context("pairing the main deck", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:     validID,
				Base:   baseRef,
				Leader: leaderFront,
				Entries: []deck.Entry{
					{Card: cardA, Count: 3},
					{Card: cardMissing, Count: 2},
					{Card: cardB, Count: 2},
				},
			}
		})

		It("fetches each distinct card once and pairs copies in deck order", func() {
			path, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())

			var deckSheets []composed
			for _, s := range rec.sheets {
				if s.rotate {
					continue
				}
				deckSheets = append(deckSheets, s)
			}
			Expect(deckSheets).To(Equal([]composed{
				{"deck_1.jpg", "A", "A", false},
				{"deck_2.jpg", "A", "Bc", false},
				{"deck_3.jpg", "Bc", "Bc", false},
			}))

			count := map[cards.ImageRef]int{}
			for _, c := range images.calls {
				count[c]++
			}
			Expect(count[cardA]).To(Equal(1))
			Expect(count[cardB]).To(Equal(1))
			Expect(count[cardMissing]).To(Equal(1))

			Expect(zipNames(path)).To(ConsistOf(
				"leader.jpg", "base.jpg", "deck_1.jpg", "deck_2.jpg", "deck_3.jpg",
			))
		})
	})

	DescribeTable("number of deck sheets is ceil(N/2)",
		func(counts []int, wantSheets int) {
			var entries []deck.Entry
			for i, c := range counts {
				ref := cards.ImageRef(fmt.Sprintf("/cards/T/%03d.png", i))
				images.images[ref] = []byte(fmt.Sprintf("c%d", i))
				entries = append(entries, deck.Entry{Card: ref, Count: c})
			}
			resolver.decks[validID] = &deck.Descriptor{ID: validID, Base: baseRef, Entries: entries}

			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())

			// the first sheet is the base
			deckSheets := rec.sheets[1:]
			Expect(deckSheets).To(HaveLen(wantSheets))

			total := 0
			for _, c := range counts {
				total += c
			}
			if total%2 == 1 {
				last := deckSheets[len(deckSheets)-1]
				Expect(last.first).To(Equal(last.second))
			}
		},
		Entry("one card", []int{1}, 1),
		Entry("two singles", []int{1, 1}, 1),
		Entry("three of one", []int{3}, 2),
		Entry("mixed odd", []int{3, 1, 1}, 3),
		Entry("full deck", []int{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 2}, 25),
	)

	Context("when compositing fails", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:      validID,
				Base:    baseRef,
				Entries: []deck.Entry{{Card: cardA, Count: 2}},
			}
			rec.fail = "deck_1.jpg"
		})

		It("aborts the whole deck and still removes the scratch directory", func() {
			path, err := p.ProcessDeck(ctx, validID)
			Expect(err).To(MatchError(pipeline.ErrCompositeFailed))
			Expect(path).To(BeEmpty())
			Expect(scratchEntries()).To(BeEmpty())

			archives, _ := os.ReadDir(archiveDir)
			Expect(archives).To(BeEmpty())
		})
	})

	Context("when no sheet could be produced", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:      validID,
				Base:    cardMissing,
				Entries: []deck.Entry{{Card: cardMissing, Count: 2}},
			}
		})

		It("reports an archive failure and cleans up", func() {
			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).To(MatchError(pipeline.ErrArchiveFailed))
			Expect(scratchEntries()).To(BeEmpty())
		})
	})

	Context("when the caller goes away", func() {
		BeforeEach(func() {
			resolver.decks[validID] = &deck.Descriptor{
				ID:      validID,
				Base:    baseRef,
				Entries: []deck.Entry{{Card: cardA, Count: 2}},
			}
		})

		It("stops fetching and cleans up", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := p.ProcessDeck(cctx, validID)
			Expect(err).To(MatchError(context.Canceled))
			Expect(images.calls).To(BeEmpty())
			Expect(scratchEntries()).To(BeEmpty())
		})
	})

	Context("with the real compositor", func() {
		BeforeEach(func() {
			images.images[leaderFront] = pngBytes(color.NRGBA{R: 200, A: 255})
			images.images[leaderBack] = pngBytes(color.NRGBA{G: 200, A: 255})
			images.images[baseRef] = pngBytes(color.NRGBA{B: 200, A: 255})
			images.images[cardA] = pngBytes(color.NRGBA{R: 200, G: 200, A: 255})
			resolver.decks[validID] = &deck.Descriptor{
				ID:      validID,
				Leader:  leaderFront,
				Base:    baseRef,
				Entries: []deck.Entry{{Card: cardA, Count: 1}},
			}
		})

		It("writes decodable sheets into the archive", func() {
			p = pipeline.New(resolver, images, pipeline.Options{
				Validator:  deck.NewValidator(deck.AlphabetLetters, 32),
				ScratchDir: scratchDir,
				ArchiveDir: archiveDir,
			}, testLogger())

			path, err := p.ProcessDeck(ctx, validID)
			Expect(err).NotTo(HaveOccurred())
			Expect(zipNames(path)).To(Equal([]string{"base.jpg", "deck_1.jpg", "leader.jpg"}))
		})

		It("fails loudly when an image is not decodable", func() {
			images.images[cardA] = []byte("<html>oops</html>")
			p = pipeline.New(resolver, images, pipeline.Options{
				Validator:  deck.NewValidator(deck.AlphabetLetters, 32),
				ScratchDir: scratchDir,
				ArchiveDir: archiveDir,
			}, testLogger())

			_, err := p.ProcessDeck(ctx, validID)
			Expect(err).To(MatchError(pipeline.ErrCompositeFailed))
			Expect(scratchEntries()).To(BeEmpty())
		})
	})
})

package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/swuproxy/internal/deck"
	imagepkg "github.com/youruser/swuproxy/internal/image"
	"github.com/youruser/swuproxy/internal/pipeline"
	"github.com/youruser/swuproxy/pkg/logger"
)

// DeckProcessor is the slice of *pipeline.Pipeline the handlers need.
type DeckProcessor interface {
	Validate(raw string) (deck.ID, error)
	ProcessDeck(ctx context.Context, raw string) (string, error)
}

type Handler struct {
	decks        DeckProcessor
	resolver     pipeline.DeckResolver
	deckPageBase string
	placeholder  string
	limiter      *RateLimiter
	log          *logger.Logger
}

type Options struct {
	DeckPageBase string
	Alphabet     deck.Alphabet
	Limiter      *RateLimiter
}

func NewHandler(decks DeckProcessor, resolver pipeline.DeckResolver, opts Options, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	placeholder := "e.g. aBcDeFg"
	if opts.Alphabet == deck.AlphabetAlphanumeric {
		placeholder = "e.g. 1234567"
	}
	return &Handler{
		decks:        decks,
		resolver:     resolver,
		deckPageBase: opts.DeckPageBase,
		placeholder:  placeholder,
		limiter:      opts.Limiter,
		log:          log,
	}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{
		"Placeholder": h.placeholder,
		"MaxInput":    512,
	})
}

// download runs the whole pipeline for the posted deckId and streams the
// archive back as an attachment. The archive is removed once sent.
func (h *Handler) download(c *gin.Context) {
	raw := c.PostForm("deckId")
	h.log.Info("Download requested for %q", raw)

	path, err := h.decks.ProcessDeck(c.Request.Context(), raw)
	if err != nil {
		status, msg := errorStatus(err)
		h.log.Warn("Download for %q failed: %v", raw, err)
		c.String(status, msg)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			h.log.Warn("Could not remove archive %s: %v", path, err)
		}
	}()

	id, _ := h.decks.Validate(raw)
	c.FileAttachment(path, id.String()+".zip")
}

// deckText returns the plain text export of a deck.
func (h *Handler) deckText(c *gin.Context) {
	id, err := h.decks.Validate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		status, _ := errorStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    d.ID,
		"name":  d.Name,
		"cards": d.CardCount(),
		"text":  deck.ExportDeckText(d),
	})
}

// deckQR returns a PNG QR code linking to the deck page on swudb.
func (h *Handler) deckQR(c *gin.Context) {
	id, err := h.decks.Validate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size := imagepkg.DefaultQRSize
	if sizeStr := c.Query("size"); sizeStr != "" {
		if v, err := strconv.Atoi(sizeStr); err == nil {
			size = v
		}
	}
	b, err := imagepkg.GenerateQRPNG(h.deckPageBase+id.String(), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, deck.ErrInvalidIdentifier):
		return http.StatusBadRequest, "Invalid deck ID: " + err.Error()
	case errors.Is(err, deck.ErrResolveFailed):
		return http.StatusBadGateway, "Could not load that deck from swudb.com, check the ID and try again."
	default:
		return http.StatusInternalServerError, "Generation failed, please try again later."
	}
}

package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/youruser/swuproxy/internal/cards"
	"github.com/youruser/swuproxy/internal/util"
	"github.com/youruser/swuproxy/pkg/logger"
)

// payload mirrors the parts of the swudb deck API response the pipeline needs.
type payload struct {
	Metadata *struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Leader       *cardPayload `json:"leader"`
	SecondLeader *cardPayload `json:"secondLeader"`
	Base         *cardPayload `json:"base"`
	ShuffledDeck []struct {
		Card  *cardPayload `json:"card"`
		Count int          `json:"count"`
	} `json:"shuffledDeck"`
}

type cardPayload struct {
	DefaultImagePath string `json:"defaultImagePath"`
}

func (c *cardPayload) ref() cards.ImageRef {
	if c == nil {
		return ""
	}
	return cards.ImageRef(strings.TrimSpace(c.DefaultImagePath))
}

// Resolver fetches deck lists from the swudb deck API.
type Resolver struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewResolver(baseURL string, client *http.Client, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{baseURL: baseURL, client: client, log: log}
}

// Resolve issues a single GET for the deck. There is no retry and no cache.
func (r *Resolver) Resolve(ctx context.Context, id ID) (*Descriptor, error) {
	url := r.baseURL + string(id)
	r.log.Debug("Resolving deck %s from %s", id, url)

	body, err := util.GetBytes(ctx, r.client, url, "application/json")
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrResolveFailed, id, err)
	}

	d, dropped, err := parse(id, body)
	if err != nil {
		return nil, err
	}
	for _, skipped := range dropped {
		r.log.Debug("Deck %s: dropped entry %s", id, skipped)
	}
	r.log.Info("Resolved deck %s: %d leader(s), %d entries, %d cards", id, len(d.Leaders()), len(d.Entries), d.CardCount())
	return d, nil
}

// parse decodes a deck API response body. Entries without an image path or
// with a count below one are dropped and described in the second result.
func parse(id ID, body []byte) (*Descriptor, []string, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, nil, fmt.Errorf("%w %s: malformed payload: %w", ErrResolveFailed, id, err)
	}

	base := p.Base.ref()
	if base.Empty() {
		return nil, nil, fmt.Errorf("%w %s: payload has no base", ErrResolveFailed, id)
	}

	out := &Descriptor{
		ID:           id,
		Leader:       p.Leader.ref(),
		SecondLeader: p.SecondLeader.ref(),
		Base:         base,
	}
	var dropped []string
	if p.Metadata != nil {
		out.Name = p.Metadata.Name
	}

	for i, e := range p.ShuffledDeck {
		ref := e.Card.ref()
		switch {
		case ref.Empty():
			dropped = append(dropped, fmt.Sprintf("#%d (no image path)", i))
		case e.Count < 1:
			dropped = append(dropped, fmt.Sprintf("#%d %s (count %d)", i, ref, e.Count))
		default:
			out.Entries = append(out.Entries, Entry{Card: ref, Count: e.Count})
		}
	}
	return out, dropped, nil
}

package imagepkg

import (
	"context"
	"net/http"

	"github.com/youruser/swuproxy/internal/cards"
	"github.com/youruser/swuproxy/internal/util"
	"github.com/youruser/swuproxy/pkg/logger"
)

const acceptImages = "image/webp,image/png,image/jpeg;q=0.9,*/*;q=0.5"

// Fetcher downloads card artwork from the image CDN.
type Fetcher struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewFetcher(baseURL string, client *http.Client, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Fetcher{baseURL: baseURL, client: client, log: log}
}

// Fetch downloads one image. Failures are logged and reported as absent;
// they never abort the caller.
func (f *Fetcher) Fetch(ctx context.Context, ref cards.ImageRef) ([]byte, bool) {
	url := f.baseURL + cards.Sanitize(ref)
	f.log.Trace("GET %s", url)

	body, err := util.GetBytes(ctx, f.client, url, acceptImages)
	if err != nil {
		f.log.Warn("Error downloading image %s: %v", ref, err)
		return nil, false
	}
	if len(body) == 0 {
		f.log.Warn("Error downloading image %s: empty body", ref)
		return nil, false
	}
	return body, true
}

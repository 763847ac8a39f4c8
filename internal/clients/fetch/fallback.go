package fetch

import (
	"context"

	"github.com/jobradar/jobradar/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FallbackFetcher tries the primary fetcher and falls back to the secondary
// when the primary fails. Platforms behind aggressive anti-bot protection
// put the proxy first; everyone else keeps the direct client first.
type FallbackFetcher struct {
	primary   Fetcher
	secondary Fetcher
}

func NewFallbackFetcher(primary, secondary Fetcher) *FallbackFetcher {
	return &FallbackFetcher{primary: primary, secondary: secondary}
}

func (f *FallbackFetcher) Get(ctx context.Context, url string, opts Options) (*Page, error) {

	page, err := f.primary.Get(ctx, url, opts)
	if err == nil {
		return page, nil
	}

	// rate limiting is the caller's signal to back off, not to hammer
	// the same site through another channel
	if errors.Is(err, ErrRateLimited) || f.secondary == nil {
		return nil, err
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
		Warnf("primary fetch of %s failed (%v), trying fallback", url, err)

	page, fallbackErr := f.secondary.Get(ctx, url, opts)
	if fallbackErr != nil {
		return nil, errors.Wrapf(fallbackErr, "fallback after: %v", err)
	}
	return page, nil
}

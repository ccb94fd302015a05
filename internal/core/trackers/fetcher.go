package trackers

import (
	"context"
	"fmt"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"io/ioutil"
	"net/http"
)

type IFetcher interface {
	// Resolve turns the full configured descriptor list into one
	// deduplicated tracker set. Every fetchable descriptor is fetched
	// concurrently; a single failed source fails the whole resolve, no
	// partial result is ever returned.
	Resolve(ctx context.Context, sources []string) (*Set, error)
}

type fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) IFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &fetcher{client: client}
}

type fetchResult struct {
	source   string
	trackers *Set
	err      error
}

func (f *fetcher) Resolve(ctx context.Context, sources []string) (*Set, error) {
	log := logs.GetLogger()

	merged, fetchables := Partition(sources)
	if len(fetchables) == 0 {
		return merged, nil
	}

	results := make(chan fetchResult, len(fetchables))
	for _, source := range fetchables {
		go func(source string) {
			set, err := f.fetchOne(ctx, source)
			results <- fetchResult{source: source, trackers: set, err: err}
		}(source)
	}

	// Join-all barrier: every task reports exactly once, even after a
	// failure has already been observed. The merge itself runs on this
	// goroutine only.
	var firstErr error
	for i := 0; i < len(fetchables); i++ {
		result := <-results
		if result.err != nil {
			log.Error("tracker fetch failed", zap.String("source", result.source), zap.Error(result.err))
			if firstErr == nil {
				firstErr = errors.Wrapf(result.err, "failed to resolve tracker source '%s'", result.source)
			}
			continue
		}
		log.Debug("tracker source resolved",
			zap.String("source", result.source),
			zap.Int("count", result.trackers.Len()),
		)
		merged.Merge(result.trackers)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	log.Info(fmt.Sprintf("resolved %d trackers from %d sources", merged.Len(), len(sources)))
	return merged, nil
}

func (f *fetcher) fetchOne(ctx context.Context, source string) (*Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build fetch request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("response status is %s", resp.Status)
	}

	return ParsePayload(string(body))
}

package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/collect"
	"github.com/sells-group/coach-directory/internal/extract"
	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/scrape"
	"github.com/sells-group/coach-directory/internal/verify"
)

// session holds the state of one run. Its page cache is shared by the
// extractor and the verifier and dies with the run.
type session struct {
	p     *Pipeline
	pages *scrape.PageCache
}

func (p *Pipeline) newSession() *session {
	s := &session{p: p}
	if p.fetcher != nil {
		s.pages = scrape.NewPageCache(p.fetcher)
	}
	return s
}

// fetcher returns the run cache as a Fetcher, or nil when none is set.
func (s *session) fetcher() scrape.Fetcher {
	if s.pages == nil {
		return nil
	}
	return s.pages
}

func (s *session) canVerify() bool {
	return s.p.cfg.VerifyContacts && s.pages != nil
}

func (s *session) collect(ctx context.Context, urls []string) (*collect.Result, error) {
	cfg := s.p.cfg
	ext, err := extract.New(s.fetcher(), s.p.generator, s.p.parser, s.p.validator, extract.Config{
		Mode:         cfg.Mode,
		MaxHTMLChars: cfg.MaxHTMLChars,
		PerPageCap:   cfg.PerPageCap,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build extractor")
	}

	c := collect.New(ext, collect.Config{
		Concurrency:   cfg.Concurrency,
		SoftThreshold: cfg.SoftThreshold,
		HardCap:       cfg.HardCap,
		Retry:         cfg.Retry,
	})
	return c.Collect(ctx, urls)
}

func (s *session) verify(ctx context.Context, recs []model.RawRecord) ([]model.RawRecord, error) {
	out, err := verify.New(s.pages, s.p.cfg.Concurrency).Verify(ctx, recs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: verify")
	}
	return out, nil
}

// Package mapper detects addresses on document pages, annotates them and
// geocodes them according to a Policy, producing the ordered record set that
// feeds the report and the map.
package mapper

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/extract"
	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
	"github.com/sells-group/address-mapper/pkg/geocode"
)

// DefaultTitle is the label given to every created annotation.
const DefaultTitle = "Address found"

// Stats summarizes the most recent run.
type Stats struct {
	Documents   int
	Pages       int
	Candidates  int
	Annotations int
	Geocoded    int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy sets the annotation/geocoding policy.
func WithPolicy(policy Policy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithAccess sets the access level of created annotations.
func WithAccess(access string) Option {
	return func(p *Pipeline) {
		p.access = access
	}
}

// WithTitle sets the annotation title.
func WithTitle(title string) Option {
	return func(p *Pipeline) {
		if title != "" {
			p.title = title
		}
	}
}

// WithExtractOptions sets the candidate extraction options.
func WithExtractOptions(opts extract.Options) Option {
	return func(p *Pipeline) {
		p.extract = opts
	}
}

// WithDryRun disables annotation creation. Records carry no annotation.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// Pipeline runs detection, annotation and geocoding over documents. It is
// not safe for concurrent use.
type Pipeline struct {
	geocoder geocode.Client
	policy   Policy
	access   string
	title    string
	extract  extract.Options
	dryRun   bool
	stats    Stats
}

// New creates a Pipeline around the given geocoder.
func New(gc geocode.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		geocoder: gc,
		policy:   DefaultPolicy,
		access:   platform.AccessPrivate,
		title:    DefaultTitle,
		extract:  extract.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the configured policy.
func (p *Pipeline) Policy() Policy { return p.policy }

// LastStats returns the counters of the most recent Run.
func (p *Pipeline) LastStats() Stats { return p.stats }

// Run processes documents in order, pages 1..PageCount, candidates sorted.
// Platform failures abort the run; geocoder failures count as misses.
func (p *Pipeline) Run(ctx context.Context, docs []platform.Document) ([]model.Record, error) {
	if p.geocoder == nil {
		return nil, eris.New("mapper: geocoder is required")
	}
	if !platform.ValidAccess(p.access) {
		return nil, eris.Errorf("mapper: invalid access %q", p.access)
	}
	if p.policy != PolicyGeocodeFirst && p.policy != PolicyAnnotateFirst {
		return nil, eris.Errorf("mapper: unknown policy %q", p.policy)
	}

	p.stats = Stats{}
	records := []model.Record{}

	for _, doc := range docs {
		info := doc.Info()
		log := zap.L().With(
			zap.String("document", info.ID),
			zap.String("title", info.Title),
			zap.String("policy", p.policy.String()),
		)
		log.Info("mapper: processing document", zap.Int("pages", info.PageCount))

		before := len(records)
		for page := 1; page <= info.PageCount; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var err error
			records, err = p.processPage(ctx, doc, info, page, records)
			if err != nil {
				return nil, err
			}
			p.stats.Pages++
		}
		p.stats.Documents++
		log.Info("mapper: document done", zap.Int("records", len(records)-before))
	}

	if p.policy == PolicyAnnotateFirst {
		if err := p.geocodeRecords(ctx, records); err != nil {
			return nil, err
		}
	}

	p.stats.Geocoded = model.CountGeocoded(records)
	zap.L().Info("mapper: run complete",
		zap.Int("documents", p.stats.Documents),
		zap.Int("pages", p.stats.Pages),
		zap.Int("candidates", p.stats.Candidates),
		zap.Int("annotations", p.stats.Annotations),
		zap.Int("geocoded", p.stats.Geocoded),
	)
	return records, nil
}

func (p *Pipeline) processPage(ctx context.Context, doc platform.Document, info model.Document, page int, records []model.Record) ([]model.Record, error) {
	text, err := doc.PageText(ctx, page)
	if err != nil {
		return nil, eris.Wrapf(err, "mapper: document %s page %d: text", info.ID, page)
	}
	candidates := extract.Candidates(text, p.extract)
	if len(candidates) == 0 {
		return records, nil
	}
	p.stats.Candidates += len(candidates)

	if p.policy == PolicyAnnotateFirst {
		for _, cand := range candidates {
			rec, err := p.annotate(ctx, doc, info, page, cand, nil)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, nil
	}

	positions, err := doc.PagePositions(ctx, page)
	if err != nil {
		return nil, eris.Wrapf(err, "mapper: document %s page %d: positions", info.ID, page)
	}
	for _, cand := range candidates {
		box, ok := locate(positions, cand)
		if !ok {
			zap.L().Debug("mapper: no token contains candidate",
				zap.String("document", info.ID), zap.Int("page", page), zap.String("address", cand))
			continue
		}
		res, err := p.lookup(ctx, cand)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}
		rec, err := p.annotate(ctx, doc, info, page, cand, &box)
		if err != nil {
			return nil, err
		}
		rec.SetLocation(res.Latitude, res.Longitude)
		records = append(records, rec)
	}
	return records, nil
}

// annotate creates the annotation for a candidate (unless dry-running) and
// returns the matching record.
func (p *Pipeline) annotate(ctx context.Context, doc platform.Document, info model.Document, page int, cand string, box *model.Position) (model.Record, error) {
	rec := model.Record{
		Address:       cand,
		DocumentID:    info.ID,
		DocumentTitle: info.Title,
		Page:          page,
	}
	if p.dryRun {
		return rec, nil
	}

	ann, err := doc.CreateAnnotation(ctx, platform.AnnotationRequest{
		Title:   p.title,
		Page:    page,
		Content: cand,
		Access:  p.access,
		Box:     box,
	})
	if err != nil {
		return model.Record{}, eris.Wrapf(err, "mapper: document %s page %d: annotate", info.ID, page)
	}
	p.stats.Annotations++
	rec.AnnotationID = ann.ID
	rec.AnnotationURL = ann.URL
	return rec, nil
}

// geocodeRecords fills coordinates in place with one batch lookup in record
// order. A batch failure leaves the unresolved records without coordinates.
func (p *Pipeline) geocodeRecords(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	addrs := make([]geocode.AddressInput, len(records))
	for i, r := range records {
		addrs[i] = geocode.AddressInput{Query: r.Address}
	}

	results, err := p.geocoder.BatchGeocode(ctx, addrs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		zap.L().Warn("mapper: batch geocode failed, treating remaining records as misses", zap.Error(err))
	}
	for i := range records {
		if i >= len(results) || !results[i].Matched {
			zap.L().Debug("mapper: address not geocoded", zap.String("address", records[i].Address))
			continue
		}
		records[i].SetLocation(results[i].Latitude, results[i].Longitude)
	}
	return nil
}

// lookup geocodes one candidate. It returns nil for a miss and an error only
// when the context is done.
func (p *Pipeline) lookup(ctx context.Context, address string) (*geocode.Result, error) {
	res, err := p.geocoder.Geocode(ctx, geocode.AddressInput{Query: address})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		zap.L().Warn("mapper: geocode failed, treating as miss", zap.String("address", address), zap.Error(err))
		return nil, nil
	}
	if res == nil || !res.Matched {
		zap.L().Debug("mapper: address not geocoded", zap.String("address", address))
		return nil, nil
	}
	return res, nil
}

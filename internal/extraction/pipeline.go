// Package extraction turns a financial statement PDF into stored per-year
// metrics using the language model.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/core/events"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	"github.com/frahmantamala/financial-analyst/internal/llm"
)

const (
	StageRead    = "read"
	StageExtract = "extract"
	StagePersist = "persist"
)

type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

type RecordSaver interface {
	Save(ctx context.Context, r financial.Record) error
}

// YearFailure is a fiscal year that could not be stored.
type YearFailure struct {
	Year string
	Err  error
}

type Result struct {
	CompanyID   int64
	Document    string
	StoredYears []int
	FailedYears []YearFailure
}

func (r *Result) FailedKeys() []string {
	keys := make([]string, 0, len(r.FailedYears))
	for _, f := range r.FailedYears {
		keys = append(keys, f.Year)
	}
	return keys
}

type Pipeline struct {
	reader    TextExtractor
	model     llm.Model
	store     RecordSaver
	publisher events.Publisher
	maxChars  int
	logger    *slog.Logger
}

type Option func(*Pipeline)

// WithPublisher reports every processed document on the event bus.
func WithPublisher(p events.Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithMaxChars bounds how much document text is sent to the model.
func WithMaxChars(n int) Option {
	return func(pl *Pipeline) { pl.maxChars = n }
}

func NewPipeline(reader TextExtractor, model llm.Model, store RecordSaver, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		reader:   reader,
		model:    model,
		store:    store,
		maxChars: internal.DefaultMaxPromptChars,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractText reads the document, mapping any failure to ErrDocumentRead.
func (p *Pipeline) ExtractText(ctx context.Context, path string) (string, error) {
	text, err := p.reader.ExtractText(ctx, path)
	if err != nil {
		p.logger.Error("failed to read document", "path", path, "error", err)
		return "", internal.ErrDocumentRead.WithCause(err)
	}
	return text, nil
}

// ExtractStructuredMetrics asks the model for the canonical metrics of the
// two most recent fiscal years found in text.
func (p *Pipeline) ExtractStructuredMetrics(ctx context.Context, text string) (Extracted, error) {
	prompt := BuildExtractionPrompt(Truncate(text, p.maxChars))

	reply, err := p.model.Generate(ctx, prompt)
	if err != nil {
		p.logger.Error("model call failed during extraction", "error", err)
		return nil, internal.ErrModelUnavailable.WithCause(err)
	}

	extracted, err := ParseResponse(reply)
	if err != nil {
		p.logger.Error("model response is not valid JSON", "error", err, "response_chars", len(reply))
		return nil, internal.ErrExtraction.WithCause(err)
	}
	return extracted, nil
}

// Persist stores every extracted year independently. A year that fails is
// logged and reported in the result without stopping the others.
func (p *Pipeline) Persist(ctx context.Context, companyID int64, extracted Extracted, sourcePath string) *Result {
	res := &Result{CompanyID: companyID, Document: filepath.Base(sourcePath)}

	keys := make([]string, 0, len(extracted))
	for k := range extracted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		year, err := p.saveYear(ctx, companyID, key, extracted[key], res.Document)
		if err != nil {
			p.logger.Error("failed to store fiscal year",
				"company_id", companyID,
				"year", key,
				"document", res.Document,
				"error", err)
			res.FailedYears = append(res.FailedYears, YearFailure{Year: key, Err: err})
			continue
		}
		res.StoredYears = append(res.StoredYears, year)
	}
	return res
}

func (p *Pipeline) saveYear(ctx context.Context, companyID int64, key string, metrics financial.Metrics, document string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, fmt.Errorf("year %q is not an integer", key)
	}
	if metrics == nil {
		return 0, fmt.Errorf("metrics for year %d are not an object", year)
	}

	err = p.store.Save(ctx, financial.Record{
		CompanyID:      companyID,
		Year:           year,
		Metrics:        metrics,
		SourceDocument: document,
	})
	return year, err
}

// ProcessDocument reads, extracts and persists one document. Nothing is
// stored when reading or extraction fails.
func (p *Pipeline) ProcessDocument(ctx context.Context, companyID int64, path string) (*Result, error) {
	document := filepath.Base(path)
	log := p.logger.With("company_id", companyID, "document", document)
	log.Info("processing document")

	text, err := p.ExtractText(ctx, path)
	if err != nil {
		p.publishFailure(ctx, companyID, document, StageRead, err)
		return nil, err
	}

	extracted, err := p.ExtractStructuredMetrics(ctx, text)
	if err != nil {
		p.publishFailure(ctx, companyID, document, StageExtract, err)
		return nil, err
	}
	if len(extracted) == 0 {
		err := internal.ErrExtraction.WithMessage("Model response contained no fiscal years")
		p.publishFailure(ctx, companyID, document, StageExtract, err)
		return nil, err
	}

	res := p.Persist(ctx, companyID, extracted, path)
	if len(res.StoredYears) == 0 {
		err := internal.NewInternalError("no fiscal year could be stored", errors.Join(yearErrors(res)...))
		p.publishFailure(ctx, companyID, document, StagePersist, err)
		return res, err
	}

	log.Info("document processed", "stored_years", res.StoredYears, "failed_years", len(res.FailedYears))
	p.publish(ctx, events.NewDocumentIngestedEvent(companyID, document, res.StoredYears, res.FailedKeys()))
	return res, nil
}

func yearErrors(res *Result) []error {
	errs := make([]error, 0, len(res.FailedYears))
	for _, f := range res.FailedYears {
		errs = append(errs, f.Err)
	}
	return errs
}

func (p *Pipeline) publishFailure(ctx context.Context, companyID int64, document, stage string, err error) {
	p.publish(ctx, events.NewDocumentIngestionFailedEvent(companyID, document, stage, err.Error()))
}

func (p *Pipeline) publish(ctx context.Context, ev events.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, ev); err != nil {
		p.logger.Warn("ingestion event not delivered", "event_type", ev.EventType(), "error", err)
	}
}

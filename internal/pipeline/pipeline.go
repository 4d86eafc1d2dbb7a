// Package pipeline runs a brief end to end: industry definition, brand
// assets, per-question collection and scoring, aggregation and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/ppiankov/brandlens/internal/aggregate"
	"github.com/ppiankov/brandlens/internal/brand"
	"github.com/ppiankov/brandlens/internal/collect"
	"github.com/ppiankov/brandlens/internal/extract"
	"github.com/ppiankov/brandlens/internal/intake"
	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/store"
	"github.com/ppiankov/brandlens/internal/worker"
)

// IndustryDefiner resolves the brand's industry and canonical competitors
type IndustryDefiner interface {
	DefineIndustry(ctx context.Context, brandName string, competitors, keyMessages []string) (*model.IndustryProfile, error)
}

// AssetLookup fetches presentation assets for a website
type AssetLookup interface {
	Lookup(ctx context.Context, website string) (*brand.Assets, error)
}

// Deps are the collaborators of a pipeline. Only Callers and Scorer are
// needed for a run; the rest are skipped when nil.
type Deps struct {
	Callers  []Caller
	Scorer   Scorer
	Industry IndustryDefiner
	Assets   AssetLookup
	Store    store.Store
	Logger   *log.Logger

	// Closers are released by Close after the store (e.g. the answer cache)
	Closers []io.Closer
}

// Pipeline orchestrates the complete run
type Pipeline struct {
	config       *model.Config
	orchestrator *Orchestrator
	industry     IndustryDefiner
	assets       AssetLookup
	store        store.Store
	closers      []io.Closer
	renderer     *Renderer
	logger       *log.Logger
	now          func() time.Time
}

// New creates a pipeline from explicit collaborators
func New(cfg *model.Config, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	st := deps.Store
	if st == nil {
		st = store.Discard{}
	}

	return &Pipeline{
		config:       cfg,
		orchestrator: NewOrchestrator(deps.Callers, deps.Scorer, logger),
		industry:     deps.Industry,
		assets:       deps.Assets,
		store:        st,
		closers:      deps.Closers,
		renderer:     NewRenderer(),
		logger:       logger,
		now:          time.Now,
	}
}

// Persistence reports what reached the store
type Persistence struct {
	Backend          string `json:"backend"`
	RawWritten       int    `json:"raw_written"`
	Unwritten        int    `json:"unwritten"`
	AggregateWritten bool   `json:"aggregate_written"`
	Error            string `json:"error,omitempty"`
}

// RunResult is everything a run produced. It is also the saved report format.
type RunResult struct {
	Brief       model.Brief            `json:"brief"`
	Industry    *model.IndustryProfile `json:"industry"`
	Assets      *brand.Assets          `json:"brand_assets,omitempty"`
	Results     []model.QuestionResult `json:"results"`
	Aggregate   model.RunAggregate     `json:"aggregate"`
	Persistence Persistence            `json:"persistence"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  time.Time              `json:"finished_at"`
}

// questionJob adapts one question to the worker pool
type questionJob struct {
	orchestrator *Orchestrator
	brand        BrandContext
	index        int
	question     model.Question
}

type questionOutcome struct {
	result model.QuestionResult
}

func (r *questionOutcome) GetError() error { return nil }

func (j *questionJob) Execute(ctx context.Context) worker.Result {
	return &questionOutcome{result: j.orchestrator.Process(ctx, j.brand, j.index, j.question)}
}

// Run executes a brief. It fails only for an invalid brief; provider,
// extraction, lookup and persistence failures degrade the report instead.
func (p *Pipeline) Run(ctx context.Context, brief *model.Brief) (*RunResult, error) {
	if brief == nil {
		return nil, fmt.Errorf("%w: nil brief", intake.ErrInvalidBrief)
	}
	if err := intake.Validate(brief); err != nil {
		return nil, err
	}

	res := &RunResult{Brief: *brief, StartedAt: p.now().UTC()}

	// 1. Industry and canonical competitors
	res.Industry = p.resolveIndustry(ctx, brief)

	// 2. Brand assets (logo for the dashboard row)
	res.Assets = p.lookupAssets(ctx, brief.Website)

	// 3. Collect and score every question
	res.Results = p.processQuestions(ctx, brief)

	// 4. Aggregate
	res.Aggregate = aggregate.Aggregate(res.Results, brief.BrandName, res.Industry.ValidCompetitors, res.Industry.Industry, p.config.Policy)

	// 5. Persist; the in-memory aggregate stays authoritative either way
	res.Persistence = p.persist(ctx, brief, res)

	res.FinishedAt = p.now().UTC()
	return res, nil
}

func (p *Pipeline) resolveIndustry(ctx context.Context, brief *model.Brief) *model.IndustryProfile {
	if brief.Industry != "" || len(brief.ValidCompetitors) > 0 {
		profile := extract.FallbackIndustry(brief.Competitors)
		profile.Industry = brief.Industry
		if len(brief.ValidCompetitors) > 0 {
			profile.ValidCompetitors = brief.ValidCompetitors
		}
		return profile
	}

	if p.industry == nil {
		return extract.FallbackIndustry(brief.Competitors)
	}

	profile, err := p.industry.DefineIndustry(ctx, brief.BrandName, brief.Competitors, brief.KeyMessages)
	if err != nil {
		p.logger.Printf("Warning: industry definition failed, using seed competitors: %v", err)
		return extract.FallbackIndustry(brief.Competitors)
	}
	if profile == nil {
		return extract.FallbackIndustry(brief.Competitors)
	}
	if len(profile.ValidCompetitors) == 0 {
		profile.ValidCompetitors = extract.FallbackIndustry(brief.Competitors).ValidCompetitors
	}
	return profile
}

func (p *Pipeline) lookupAssets(ctx context.Context, website string) *brand.Assets {
	if p.assets == nil || website == "" {
		return nil
	}
	assets, err := p.assets.Lookup(ctx, website)
	if err != nil {
		p.logger.Printf("Warning: brand asset lookup failed for %s: %v", website, err)
		return nil
	}
	return assets
}

func (p *Pipeline) processQuestions(ctx context.Context, brief *model.Brief) []model.QuestionResult {
	bc := BrandContext{
		BrandName:   brief.BrandName,
		KeyMessages: brief.KeyMessages,
		Competitors: brief.Competitors,
	}

	jobs := make([]worker.Job, len(brief.Questions))
	for i, q := range brief.Questions {
		jobs[i] = &questionJob{orchestrator: p.orchestrator, brand: bc, index: i, question: q}
	}

	pool := worker.NewPoolWithContext(ctx, p.config.Concurrency.Workers)
	outcomes := pool.Run(jobs)

	results := make([]model.QuestionResult, 0, len(brief.Questions))
	seen := make(map[int]bool, len(outcomes))
	for _, o := range outcomes {
		r := o.(*questionOutcome).result
		seen[r.Index] = true
		results = append(results, r)
		p.logger.Printf("question %d/%d done", r.Index+1, len(brief.Questions))
	}

	// Questions dropped by cancellation still get a full, zero-scored result
	for i, q := range brief.Questions {
		if !seen[i] {
			results = append(results, unprocessed(i, q, ctx.Err()))
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

func unprocessed(index int, q model.Question, cause error) model.QuestionResult {
	r := model.NewQuestionResult(index, q)
	note := "not processed"
	if cause != nil {
		note = fmt.Sprintf("not processed: %v", cause)
	}
	for _, p := range model.Providers {
		r.Answers[p] = model.ProviderAnswer{Provider: p, Text: collect.SentinelTimeout}
		r.Scores[p] = model.ScoreCard{Notes: note}
	}
	return r
}

func (p *Pipeline) persist(ctx context.Context, brief *model.Brief, res *RunResult) Persistence {
	out := Persistence{Backend: p.config.Store.Backend}
	var errs []error

	raw := store.BuildRawRecords(store.RunMeta{
		RunID:      brief.RunID,
		CustomerID: brief.CustomerID,
		SessionID:  brief.SessionID,
		RunDate:    res.StartedAt,
	}, res.Results)

	written, err := p.store.SaveRaw(ctx, raw)
	out.RawWritten = written
	if err != nil {
		out.Unwritten += len(raw) - written
		errs = append(errs, err)
	}

	logo := ""
	if res.Assets != nil {
		logo = res.Assets.LogoURL
	}
	rec, err := store.BuildAggregateRecord(res.Aggregate, store.AggregateMeta{
		RunID:      brief.RunID,
		SessionID:  brief.SessionID,
		BrandLogo:  logo,
		ReportDate: res.StartedAt,
	}, p.config.Policy)
	if err == nil {
		err = p.store.SaveAggregate(ctx, rec)
	}
	if err != nil {
		out.Unwritten++
		errs = append(errs, err)
	} else {
		out.AggregateWritten = true
	}

	if joined := errors.Join(errs...); joined != nil {
		out.Error = joined.Error()
		p.logger.Printf("Warning: %d records not persisted: %v", out.Unwritten, joined)
	}
	return out
}

// Reaggregate recomputes the aggregate of a saved run, e.g. after a policy change
func Reaggregate(res *RunResult, policy model.PolicyConfig) model.RunAggregate {
	industry := res.Industry
	if industry == nil {
		industry = extract.FallbackIndustry(res.Brief.Competitors)
	}
	return aggregate.Aggregate(res.Results, res.Brief.BrandName, industry.ValidCompetitors, industry.Industry, policy)
}

// RenderReport writes the JSON and Markdown reports and prints the summary
func (p *Pipeline) RenderReport(res *RunResult, jsonPath, mdPath string, out io.Writer, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(res, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(out, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(res, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(out, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(out, res)
	return nil
}

// RunBrief runs a brief and returns only its aggregate; it lets a Pipeline
// serve as a batch runner
func (p *Pipeline) RunBrief(ctx context.Context, brief *model.Brief) (*model.RunAggregate, error) {
	res, err := p.Run(ctx, brief)
	if err != nil {
		return nil, err
	}
	return &res.Aggregate, nil
}

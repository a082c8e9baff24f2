// Package orchestrator wires one source's pipeline end to end (§4.I):
// extract claims, persist them, route and fan out to evidence adapters,
// score and persist evidence, then group the run's claims with the
// aggregator. The orchestrator is a struct rather than a bare function,
// following the extract->verify-concurrently->score->persist
// staging common to claim-verification pipelines, but fan-out is a bounded
// worker pool over (claim, source_id) pairs (§5) rather than one goroutine
// per claim.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/obelus-labs/veritas/internal/adapter"
	"github.com/obelus-labs/veritas/internal/aggregator"
	"github.com/obelus-labs/veritas/internal/extractor"
	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/obs"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/obelus-labs/veritas/internal/store"
	"github.com/obelus-labs/veritas/internal/textproc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultFanoutConcurrency is the bounded per-claim adapter fan-out cap
// (§5 "bounded concurrency cap (default 4)").
const DefaultFanoutConcurrency = 4

// Config holds the orchestrator's tunables; zero values fall back to the
// §5 defaults in New.
type Config struct {
	FanoutConcurrency int
	RouterConfig      router.Config
	// PerSourceDeadline bounds one RunSource call; zero means no deadline.
	PerSourceDeadline time.Duration
}

// Broadcaster is the narrow interface the optional alerts/feed server
// satisfies (api.Hub), kept here rather than importing internal/api
// directly so RunSource stays usable with no server attached at all.
type Broadcaster interface {
	BroadcastEvidence(model.ScoredEvidence)
	BroadcastGroup(model.ClaimGroup)
}

// Orchestrator drives one source's extract -> route -> fetch -> score ->
// persist -> aggregate pipeline.
type Orchestrator struct {
	Extractor  *extractor.Extractor
	Adapters   *adapter.Registry
	Scorer     *scorer.Scorer
	Store      store.Store
	Aggregator *aggregator.Aggregator
	Lexicon    *lexicon.Lexicon
	Config     Config
	// Broadcast is optional; when set, RunSource pushes each scored
	// evidence candidate to it as soon as it is persisted, and each claim
	// group once, after every claim of the run has been processed. A nil
	// Broadcast disables the feed entirely.
	Broadcast Broadcaster
	log       zerolog.Logger
}

// New builds an Orchestrator; a zero Config.FanoutConcurrency is replaced
// with DefaultFanoutConcurrency and a zero Config.RouterConfig with
// router.DefaultConfig().
func New(ex *extractor.Extractor, adapters *adapter.Registry, sc *scorer.Scorer, st store.Store, agg *aggregator.Aggregator, lex *lexicon.Lexicon, cfg Config, base zerolog.Logger) *Orchestrator {
	if cfg.FanoutConcurrency <= 0 {
		cfg.FanoutConcurrency = DefaultFanoutConcurrency
	}
	if len(cfg.RouterConfig.CategoryDefaults) == 0 {
		cfg.RouterConfig = router.DefaultConfig()
	}
	return &Orchestrator{
		Extractor:  ex,
		Adapters:   adapters,
		Scorer:     sc,
		Store:      st,
		Aggregator: agg,
		Lexicon:    lex,
		Config:     cfg,
		log:        base.With().Str("component", "orchestrator").Logger(),
	}
}

// RunSource executes the full §4.I pipeline for one source's segments and
// returns the run's outcome tally. now is the explicit temporal reference
// threaded into the extractor and scorer; it is never read from the wall
// clock by anything this function calls.
func (o *Orchestrator) RunSource(ctx context.Context, src model.Source, segments []model.TimedSegment, now time.Time) (store.RunStats, error) {
	timer := prometheus.NewTimer(obs.Metrics().OrchestratorTime)
	defer timer.ObserveDuration()

	var stats store.RunStats

	if err := o.Store.SaveSource(ctx, src); err != nil {
		return stats, err
	}

	claims, err := o.Extractor.Extract(src.ID, segments, now)
	if err != nil {
		stats.Errored++
		return stats, err
	}

	runCtx := ctx
	if o.Config.PerSourceDeadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.Config.PerSourceDeadline)
		defer cancel()
	}

	persisted := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if err := o.Store.SaveClaim(ctx, c); err != nil {
			o.log.Warn().Err(err).Str("source_id", src.ID).Str("claim_id", c.ID).Msg("claim persist failed")
			stats.Errored++
			continue
		}
		stats.Extracted++
		persisted = append(persisted, c)
	}

	for _, c := range persisted {
		if runCtx.Err() != nil {
			// Deadline already passed: this claim, and every claim after
			// it, never starts fetching and stays UNKNOWN (§5
			// "Cancellation").
			stats.Unknown++
			continue
		}
		final := o.processClaim(runCtx, c, now)
		stats.Evidenced++
		switch final {
		case model.StatusSupported:
			stats.Supported++
		case model.StatusPartial:
			stats.Partial++
		default:
			stats.Unknown++
		}
	}

	sources := map[string]model.Source{src.ID: src}
	groups := o.Aggregator.Group(persisted, sources)
	if o.Broadcast != nil {
		for _, g := range groups {
			o.Broadcast.BroadcastGroup(g)
		}
	}

	return stats, nil
}

// processClaim routes, fans out to evidence adapters, scores and persists
// evidence for one claim, and returns its final aggregate status.
func (o *Orchestrator) processClaim(ctx context.Context, claim model.Claim, now time.Time) model.Status {
	entities := textproc.DetectEntities(claim.Text, o.Lexicon)
	numbers := textproc.DetectNumbers(claim.Text)
	dates := textproc.DetectDates(claim.Text)

	sourceIDs := router.Route(o.Config.RouterConfig, claim.Category, claim.Text, entities, numbers, dates)
	req := adapter.Request{
		ClaimText: claim.Text,
		Entities:  entities,
		Numbers:   numbers,
		Dates:     dates,
		Category:  claim.Category,
	}

	results := o.fetchAll(ctx, sourceIDs, req)

	// Persist in router-sorted source order regardless of fetch
	// completion order (§5 "evidence is persisted per claim in a
	// deterministic order").
	for _, sid := range sourceIDs {
		for _, candidate := range results[sid] {
			evidence, status := o.Scorer.Score(claim, candidate, now)
			if err := o.Store.SaveEvidence(ctx, evidence, status); err != nil {
				o.log.Warn().Err(err).Str("claim_id", claim.ID).Str("source_id", string(sid)).Msg("evidence persist failed")
				continue
			}
			if o.Broadcast != nil {
				o.Broadcast.BroadcastEvidence(evidence)
			}
		}
	}

	updated, ok, err := o.Store.GetClaim(ctx, claim.ID)
	if err != nil || !ok {
		return model.StatusUnknown
	}
	return updated.Status
}

// fetchAll fans out to every routed source with a bounded worker pool
// (§5 "bounded concurrency cap"). A cancelled ctx makes in-flight adapter
// calls resolve to nil through their own absorbed-error contract, which
// this function treats the same as "no candidates" - no special-casing
// needed since Source.Fetch never errors to its caller.
func (o *Orchestrator) fetchAll(ctx context.Context, sourceIDs []router.SourceID, req adapter.Request) map[router.SourceID][]model.EvidenceCandidate {
	results := make(map[router.SourceID][]model.EvidenceCandidate, len(sourceIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.Config.FanoutConcurrency)

	for _, sid := range sourceIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sid router.SourceID) {
			defer wg.Done()
			defer func() { <-sem }()
			candidates := o.Adapters.Fetch(ctx, sid, req)
			mu.Lock()
			results[sid] = candidates
			mu.Unlock()
		}(sid)
	}
	wg.Wait()
	return results
}

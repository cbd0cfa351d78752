package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/lookupcache"
	"github.com/sells-group/address-cli/internal/table"
)

// AddressResolver resolves one query to a (standard address, lookup type)
// pair. Implementations never error: a failed lookup is a not_found result.
type AddressResolver interface {
	Resolve(ctx context.Context, query string) (string, table.LookupType)
}

// SessionControl is the session lifecycle the controller drives.
type SessionControl interface {
	Start(ctx context.Context) error
	Stop()
}

// Pacer spaces record attempts.
type Pacer interface {
	Pause(ctx context.Context)
}

// LookupCache is the optional cross-run cache consulted before navigation.
type LookupCache interface {
	Get(ctx context.Context, query string) (*lookupcache.Entry, error)
	Put(ctx context.Context, runID, query string, e lookupcache.Entry) error
}

// ProgressFunc is called after every record with (completed overall, total).
type ProgressFunc func(completed, total int)

// Options configures one run.
type Options struct {
	InputPath  string
	OutputPath string
	// Resume loads the existing output file as a checkpoint instead of the
	// input. Records already marked processed are never reattempted within
	// a checkpoint lineage, even when they resolved to the not_found
	// sentinel; deleting the checkpoint is the only reset.
	Resume    bool
	BatchSize int
	Progress  ProgressFunc
}

// Controller orchestrates a run: normalize (or resume), iterate pending
// records strictly sequentially over one shared session, write back results,
// and persist the whole table after every batch. Per-record failures are
// absorbed by the resolver; only setup failures abort the run.
type Controller struct {
	opts     Options
	session  SessionControl
	resolver AddressResolver
	pace     Pacer
	cache    LookupCache
	log      *zap.Logger
	runID    string
}

// NewController wires a controller. cache may be nil.
func NewController(opts Options, session SessionControl, resolver AddressResolver, pace Pacer, cache LookupCache, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	runID := uuid.New().String()
	return &Controller{
		opts:     opts,
		session:  session,
		resolver: resolver,
		pace:     pace,
		cache:    cache,
		log:      log.With(zap.String("run_id", runID)),
		runID:    runID,
	}
}

// Run executes the pipeline and returns the final table. The output file is
// simultaneously the resumable checkpoint and the deliverable.
func (c *Controller) Run(ctx context.Context) (*table.Table, error) {
	cp := table.NewCheckpoint(c.opts.OutputPath, c.log)

	tbl, err := c.loadTable(ctx, cp)
	if err != nil {
		return nil, err
	}

	if err := c.session.Start(ctx); err != nil {
		return nil, err
	}
	defer c.session.Stop()

	total := tbl.Len()
	pending := tbl.Pending()
	base := total - len(pending)
	c.log.Info("processing addresses", zap.Int("total", total), zap.Int("pending", len(pending)))

	completed := 0
	for start := 0; start < len(pending); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}

		for _, idx := range pending[start:end] {
			if err := ctx.Err(); err != nil {
				// Cancellation is a safe crash: persist what we have.
				if saveErr := cp.Save(context.WithoutCancel(ctx), tbl); saveErr != nil {
					c.log.Error("checkpoint save on cancellation failed", zap.Error(saveErr))
				}
				return nil, eris.Wrap(err, "pipeline: run cancelled")
			}

			c.processRecord(ctx, tbl.Rows[idx], idx)

			completed++
			if c.opts.Progress != nil {
				c.opts.Progress(base+completed, total)
			}
		}

		if err := cp.Save(ctx, tbl); err != nil {
			return nil, err
		}
		c.log.Info("progress saved", zap.Int("completed", base+completed), zap.Int("total", total))
	}

	// Final persist; idempotent when the last batch already saved.
	if err := cp.Save(ctx, tbl); err != nil {
		return nil, err
	}

	c.log.Info("processing complete", zap.String("output", c.opts.OutputPath))
	return tbl, nil
}

// loadTable resumes from an existing checkpoint or normalizes fresh input.
// A fresh table is persisted immediately so a crash before the first batch
// still leaves a resumable file.
func (c *Controller) loadTable(ctx context.Context, cp *table.Checkpoint) (*table.Table, error) {
	if c.opts.Resume && cp.Exists() {
		raw, err := cp.Load()
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: load checkpoint")
		}
		tbl, err := table.Normalize(raw, true)
		if err != nil {
			return nil, err
		}
		c.log.Info("resuming from existing output file", zap.Int("rows", tbl.Len()))
		return tbl, nil
	}

	raw, err := table.Read(c.opts.InputPath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read input")
	}
	tbl, err := table.Normalize(raw, false)
	if err != nil {
		return nil, err
	}
	if err := cp.Save(ctx, tbl); err != nil {
		return nil, err
	}
	c.log.Info("created fresh working copy", zap.Int("rows", tbl.Len()))
	return tbl, nil
}

// processRecord resolves one record and flips its processed flag exactly
// once. Cache hits and empty queries make no external attempt and skip the
// pacing pause; every real attempt paces, not_found included.
func (c *Controller) processRecord(ctx context.Context, r *table.Record, idx int) {
	query := r.Query()
	if query == "" {
		c.log.Warn("empty query, skipping", zap.Int("row", idx+1))
		r.SetResult(table.NotFound, table.LookupUnknown)
		r.SetProcessed(true)
		return
	}

	if entry := c.cachedResult(ctx, query); entry != nil {
		r.SetResult(entry.Address, table.LookupType(entry.LookupType))
		r.SetProcessed(true)
		return
	}

	address, lt := c.resolver.Resolve(ctx, query)
	r.SetResult(address, lt)
	r.SetProcessed(true)

	if c.cache != nil && address != table.NotFound {
		if err := c.cache.Put(ctx, c.runID, query, lookupcache.Entry{Address: address, LookupType: string(lt)}); err != nil {
			c.log.Warn("lookup cache write failed", zap.Error(err))
		}
	}

	c.pace.Pause(ctx)
}

func (c *Controller) cachedResult(ctx context.Context, query string) *lookupcache.Entry {
	if c.cache == nil {
		return nil
	}
	entry, err := c.cache.Get(ctx, query)
	if err != nil {
		c.log.Warn("lookup cache read failed", zap.Error(err))
		return nil
	}
	return entry
}

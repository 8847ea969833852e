package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/linnemanlabs/defectscope/internal/defect"
)

const (
	defaultChunkSize = 16384
	defaultListLimit = 50
	maxListLimit     = 1000
)

// Options tunes the Service. Zero values pick the defaults.
type Options struct {
	// Workers bounds concurrent chunk evaluation. 0 or 1 classifies serially.
	Workers int
	// ChunkSize is the number of atoms per unit of work.
	ChunkSize int
	// MaxAtoms rejects larger frames. 0 means no limit.
	MaxAtoms int
	// NotifyFraction is the defect fraction at which the notifier fires. 0 disables.
	NotifyFraction float64
}

// Service classifies frames and keeps their summaries.
type Service struct {
	classifier *defect.Classifier
	store      Store
	logger     log.Logger
	metrics    *Metrics
	notifier   Notifier
	opts       Options
}

// NewService creates a frame service. metrics and notifier may be nil.
func NewService(classifier *defect.Classifier, store Store, logger log.Logger, metrics *Metrics, notifier Notifier, opts Options) *Service {
	if classifier == nil {
		panic(xerrors.New("classifier is required"))
	}
	if store == nil {
		panic(xerrors.New("frame store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	return &Service{
		classifier: classifier,
		store:      store,
		logger:     logger,
		metrics:    metrics,
		notifier:   notifier,
		opts:       opts,
	}
}

// ClassifyAtom classifies a single atom outside of any frame.
func (s *Service) ClassifyAtom(sig defect.AtomSignal) defect.Result {
	return s.classifier.Classify(sig)
}

// Classify labels every atom of f and stores the frame summary. Host
// precondition violations are returned as ErrMissingProperty,
// ErrLengthMismatch or ErrTooManyAtoms; individual bad atoms never fail the
// frame, they are labelled Unidentified.
func (s *Service) Classify(ctx context.Context, f *Frame) (*Result, error) {
	if err := f.Check(); err != nil {
		s.metrics.frameFailed("rejected")
		return nil, err
	}
	n := f.Atoms()
	if s.opts.MaxAtoms > 0 && n > s.opts.MaxAtoms {
		s.metrics.frameFailed("rejected")
		return nil, fmt.Errorf("%w: %d atoms, limit %d", ErrTooManyAtoms, n, s.opts.MaxAtoms)
	}

	start := time.Now()
	labels := make([]defect.Label, n)
	if err := s.classifyAtoms(ctx, f, labels); err != nil {
		s.metrics.frameFailed("canceled")
		return nil, err
	}

	res := &Result{
		Labels: labels,
		Colors: make([]defect.Color, n),
	}
	for i, l := range labels {
		res.Counts[l]++
		res.Colors[i] = defect.ColorOf(l)
	}
	res.ID = ulid.Make().String()
	res.Frame = f.Index
	res.Atoms = n
	res.CreatedAt = start
	res.Duration = time.Since(start).Seconds()

	summary := res.Summary
	if err := s.store.Put(ctx, &summary); err != nil {
		s.metrics.frameFailed("store_error")
		return nil, fmt.Errorf("store frame summary: %w", err)
	}
	s.metrics.frameClassified(&summary)

	s.logger.Info(ctx, "frame classified",
		"frame_id", summary.ID,
		"frame", summary.Frame,
		"atoms", summary.Atoms,
		"duration", summary.Duration,
		"defect_fraction", summary.Counts.DefectFraction(),
		"unidentified", summary.Counts[defect.Unidentified],
	)

	if s.shouldNotify(&summary) {
		go s.notify(context.WithoutCancel(ctx), summary)
	}

	return res, nil
}

// Get retrieves a frame summary by ID.
func (s *Service) Get(ctx context.Context, id string) (*Summary, bool, error) {
	return s.store.Get(ctx, id)
}

// List returns recent frame summaries, newest first. limit is clamped to
// 1..1000 with 50 as the default.
func (s *Service) List(ctx context.Context, limit int) ([]*Summary, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.store.List(ctx, limit)
}

// classifyAtoms fills out[i] with the label of atom i. Atoms are independent,
// so chunks run concurrently when Workers > 1 and write disjoint ranges.
func (s *Service) classifyAtoms(ctx context.Context, f *Frame, out []defect.Label) error {
	n := len(out)
	chunk := s.opts.ChunkSize

	if s.opts.Workers <= 1 || n <= chunk {
		for lo := 0; lo < n; lo += chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.classifyRange(f, out, lo, min(lo+chunk, n))
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.classifyRange(f, out, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Service) classifyRange(f *Frame, out []defect.Label, lo, hi int) {
	for i := lo; i < hi; i++ {
		out[i] = s.classifier.Label(f.Signal(i))
	}
}

func (s *Service) shouldNotify(sum *Summary) bool {
	return s.notifier != nil && s.opts.NotifyFraction > 0 && sum.Atoms > 0 &&
		sum.Counts.DefectFraction() >= s.opts.NotifyFraction
}

func (s *Service) notify(ctx context.Context, sum Summary) {
	err := s.notifier.Send(ctx, &sum)
	s.metrics.notified(err)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error(ctx, err, "frame notification failed", "frame_id", sum.ID, "frame", sum.Frame)
	}
}

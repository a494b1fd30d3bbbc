package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"txview/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type TransactionSource interface {
	FetchByMessageType(ctx context.Context) (domain.AggregationResponse, error)
}

type ViewObserver interface {
	OnFetchStarted()
	OnFetchSucceeded(groups, transactions int, elapsed time.Duration)
	OnFetchFailed(kind ErrorKind, elapsed time.Duration)
	OnUpdateDiscarded()
}

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseFailed  Phase = "failed"
	PhaseReady   Phase = "ready"
)

// ViewState is an immutable snapshot of what the page shows.
type ViewState struct {
	Phase        Phase
	Error        string
	Transactions *domain.CategorizedTransactions
}

type View struct {
	source   TransactionSource
	observer ViewObserver

	mu      sync.RWMutex
	state   ViewState
	mounted bool
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewView(source TransactionSource, observer ViewObserver) (*View, error) {
	if source == nil {
		return nil, errors.New("transaction source must not be nil")
	}
	return &View{
		source:   source,
		observer: observer,
		state:    ViewState{Phase: PhaseLoading},
		done:     make(chan struct{}),
	}, nil
}

// Mount starts the single fetch. Calls after the first are ignored.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = true
	v.active = true
	ctx, v.cancel = context.WithCancel(ctx)
	v.mu.Unlock()

	go v.load(ctx)
}

// Unmount detaches the view. A fetch still in flight is canceled and its
// result is dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = false
	if !v.mounted {
		v.mounted = true
		close(v.done)
		return
	}
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *View) State() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Done is closed once the fetch has settled, whether or not its result was applied.
func (v *View) Done() <-chan struct{} {
	return v.done
}

func (v *View) load(ctx context.Context) {
	defer close(v.done)

	tracer := otel.Tracer("txview/view")
	ctx, span := tracer.Start(ctx, "view.load")
	defer span.End()

	if v.observer != nil {
		v.observer.OnFetchStarted()
	}
	started := time.Now()

	next, err := v.fetch(ctx)
	elapsed := time.Since(started)
	if err != nil {
		kind := ClassifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(kind)))
		level := slog.LevelError
		if kind == ErrorKindCanceled {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "error fetching data", "kind", kind, "elapsed", elapsed, "err", err)
		if v.observer != nil {
			v.observer.OnFetchFailed(kind, elapsed)
		}
		next = ViewState{Phase: PhaseFailed, Error: FailureMessage}
	} else {
		span.SetAttributes(
			attribute.Int("groups", next.Transactions.Len()),
			attribute.Int("transactions", next.Transactions.TransactionCount()),
		)
		if v.observer != nil {
			v.observer.OnFetchSucceeded(next.Transactions.Len(), next.Transactions.TransactionCount(), elapsed)
		}
	}

	if !v.apply(next) {
		slog.Debug("view unmounted before fetch completed, update discarded", "phase", next.Phase)
		if v.observer != nil {
			v.observer.OnUpdateDiscarded()
		}
	}
}

func (v *View) fetch(ctx context.Context) (ViewState, error) {
	resp, err := v.source.FetchByMessageType(ctx)
	if err != nil {
		return ViewState{}, err
	}
	categorized, err := GroupByMessageType(resp)
	if err != nil {
		return ViewState{}, err
	}
	return ViewState{Phase: PhaseReady, Transactions: categorized}, nil
}

func (v *View) apply(next ViewState) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active {
		return false
	}
	v.state = next
	return true
}

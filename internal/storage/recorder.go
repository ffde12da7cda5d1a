package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

var logger = logging.NewLogger("storage")

type eventKind int

const (
	eventReport eventKind = iota + 1
	eventDecision
	eventFinish
)

type runEvent struct {
	kind     eventKind
	report   models.ReportRecord
	decision *models.TradingDecision
	err      error
}

// Recorder persists one run's artifacts off the pipeline's critical path.
// Events are buffered and written by a single goroutine; a full buffer
// spills into a detached send rather than stalling a debate turn.
type Recorder struct {
	store *Store
	runID string

	events chan runEvent
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	seq int
}

// NewRecorder registers the run and starts the write loop.
func NewRecorder(ctx context.Context, store *Store, symbol, tradeDate string) (*Recorder, error) {
	runID := uuid.NewString()
	if err := store.CreateRun(ctx, models.RunRecord{
		ID:        runID,
		Symbol:    symbol,
		TradeDate: tradeDate,
		Status:    models.RunStatusRunning,
	}); err != nil {
		return nil, err
	}

	r := &Recorder{
		store:  store,
		runID:  runID,
		events: make(chan runEvent, 64),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for {
		select {
		case ev := <-r.events:
			r.handle(ctx, ev)
		case <-r.done:
			// Drain whatever made it into the buffer before shutdown.
			for {
				select {
				case ev := <-r.events:
					r.handle(ctx, ev)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) handle(ctx context.Context, ev runEvent) {
	switch ev.kind {
	case eventReport:
		if err := r.store.SaveReport(ctx, ev.report); err != nil {
			logger.Warn().Err(err).Str("section", ev.report.Section).Msg("report write failed")
		}
	case eventDecision:
		if err := r.store.SaveDecision(ctx, r.runID, ev.decision); err != nil {
			logger.Warn().Err(err).Msg("decision write failed")
		}
	case eventFinish:
		status := models.RunStatusDone
		if ev.err != nil {
			status = models.RunStatusError
		}
		if err := r.store.UpdateRunStatus(ctx, r.runID, status); err != nil {
			logger.Warn().Err(err).Msg("run status write failed")
		}
	}
}

func (r *Recorder) enqueue(ev runEvent) {
	select {
	case <-r.done:
		return
	case r.events <- ev:
	default:
		go func() {
			select {
			case <-r.done:
			case r.events <- ev:
			}
		}()
	}
}

// RecordReport queues one report section. Sections keep arrival order.
func (r *Recorder) RecordReport(section, content string) {
	if content == "" {
		return
	}
	r.seq++
	r.enqueue(runEvent{kind: eventReport, report: models.ReportRecord{
		RunID:   r.runID,
		Section: section,
		Content: content,
		Seq:     r.seq,
	}})
}

// RecordDecision queues the distilled decision.
func (r *Recorder) RecordDecision(d *models.TradingDecision) {
	if d == nil {
		return
	}
	r.enqueue(runEvent{kind: eventDecision, decision: d})
}

// Finish marks the run's terminal status and drains the queue.
func (r *Recorder) Finish(err error) {
	r.enqueue(runEvent{kind: eventFinish, err: err})
	r.Close()
}

// Close stops accepting events and waits for pending writes.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

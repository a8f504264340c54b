// internal/app/system/workers/stalenesssweep.go
package workers

import (
	"context"
	"sync"
	"time"

	checkinstore "github.com/ehmughn/safelink-web-sub000/internal/app/store/checkins"
	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// StalenessSweep is a background worker that answers check-in requests
// nobody answered: once a request is older than the configured
// threshold, every family member whose last_update still predates the
// request is flipped to NO RESPONSE. This worker is the only writer of
// that status; manual check-ins and SOS alerts overwrite it the moment
// the member reports again.
type StalenessSweep struct {
	families *familystore.Store
	checkins *checkinstore.Store
	log      *zap.Logger
	interval time.Duration
	answerBy time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewStalenessSweep creates the sweep worker.
//
// Parameters:
//   - db: the application database
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - answerBy: how long members have to answer a check-in request
//     before being marked NO RESPONSE (e.g., 6 hours)
func NewStalenessSweep(db *mongo.Database, logger *zap.Logger, interval, answerBy time.Duration) *StalenessSweep {
	return &StalenessSweep{
		families: familystore.New(db),
		checkins: checkinstore.New(db),
		log:      logger,
		interval: interval,
		answerBy: answerBy,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *StalenessSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("staleness sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("answer_by", w.answerBy))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *StalenessSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("staleness sweep worker stopped")
}

func (w *StalenessSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Sweep)
			if err := w.Sweep(ctx); err != nil {
				w.log.Error("staleness sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Sweep processes every check-in request that aged past the answer
// window without being swept. Exported so tests and one-off admin
// tooling can run a pass directly.
func (w *StalenessSweep) Sweep(ctx context.Context) error {
	now := time.Now().UTC()
	reqs, err := w.checkins.ListUnswept(ctx, now.Add(-w.answerBy))
	if err != nil {
		return err
	}

	for _, req := range reqs {
		flipped, err := w.sweepRequest(ctx, req.FamilyCode, req.Timestamp, now)
		if err != nil {
			w.log.Error("failed to sweep check-in request",
				zap.Error(err),
				zap.String("request_id", req.ID),
				zap.String("code", req.FamilyCode))
			continue
		}
		if err := w.checkins.MarkSwept(ctx, req.ID, now); err != nil {
			return err
		}
		if flipped > 0 {
			w.log.Info("marked silent members as NO RESPONSE",
				zap.String("code", req.FamilyCode),
				zap.String("request_id", req.ID),
				zap.Int("count", flipped))
		}
	}
	return nil
}

func (w *StalenessSweep) sweepRequest(ctx context.Context, code string, askedAt, now time.Time) (int, error) {
	f, err := w.families.GetByCode(ctx, code)
	if err == familystore.ErrNotFound {
		// Everyone left; nothing to mark.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	flipped := 0
	for userID := range f.Members {
		// The cutoff is in the filter, so a member checking in while
		// the sweep runs keeps their fresh status.
		ok, err := w.families.MarkNoResponseBefore(ctx, code, userID, status.NoResponse, askedAt, now)
		if err != nil {
			return flipped, err
		}
		if ok {
			flipped++
		}
	}
	return flipped, nil
}

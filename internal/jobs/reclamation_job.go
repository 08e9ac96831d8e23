package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"kiosk/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweeper once a minute.
const DefaultSweepSchedule = "@every 1m"

// Sweeper runs one reclamation sweep.
type Sweeper interface {
	Handle(ctx context.Context, cmd commands.SweepOrdersCommand) (commands.SweepSummary, error)
}

// ReclamationJob runs the sweeper on a cron schedule. A sweep that is still
// running when the next tick fires makes that tick a no-op.
type ReclamationJob struct {
	sweeper  Sweeper
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewReclamationJob(sweeper Sweeper, schedule string, logger *slog.Logger) *ReclamationJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	logger = logger.With("component", "reclamation_job")
	cl := cronLogger{logger: logger}
	return &ReclamationJob{
		sweeper:  sweeper,
		schedule: schedule,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start registers the sweep and starts the scheduler. ctx bounds every sweep;
// Stop cancels it.
func (j *ReclamationJob) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid sweep schedule %q: %w", j.schedule, err)
	}

	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()

	j.cron.Start()
	j.logger.InfoContext(ctx, "Reclamation job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single sweep and logs its outcome.
func (j *ReclamationJob) RunOnce(ctx context.Context) {
	summary, err := j.sweeper.Handle(ctx, commands.NewSweepOrdersCommand())
	if err != nil {
		if ctx.Err() == nil {
			j.logger.ErrorContext(ctx, "Reclamation sweep failed", "error", err)
		}
		return
	}
	if summary.Found == 0 {
		j.logger.DebugContext(ctx, "Reclamation sweep found nothing to do")
	}
}

// Stop cancels a running sweep and waits for it to return.
func (j *ReclamationJob) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Reclamation job stopped")
}

// cronLogger routes robfig/cron's logging into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

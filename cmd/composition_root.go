package cmd

import (
	"log/slog"
	"net/http"

	kioskhttp "kiosk/internal/adapters/in/http"
	"kiosk/internal/adapters/out/metrics"
	"kiosk/internal/adapters/out/payment"
	"kiosk/internal/core/application/usecases/commands"
	"kiosk/internal/core/application/usecases/queries"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/core/domain/services"
	"kiosk/internal/core/ports"
	"kiosk/internal/jobs"
)

// CompositionRoot wires adapters, domain services and use cases together.
type CompositionRoot struct {
	config  Config
	logger  *slog.Logger
	clock   kernel.Clock
	repo    ports.OrderRepository
	store   ports.ObjectStore
	metrics *metrics.Collector
	gateway *payment.Gateway

	reclaimer *services.Reclaimer
	queue     *jobs.ReclamationQueue
	scheduler ports.ReclamationScheduler
}

func NewCompositionRoot(config Config, repo ports.OrderRepository, store ports.ObjectStore, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		config:  config,
		logger:  logger,
		clock:   kernel.SystemClock{},
		repo:    repo,
		store:   store,
		metrics: metrics.NewCollector(),
		gateway: payment.NewGateway(config.PaymentGatewayURL, config.PaymentSecret, 0, logger),
	}

	c.reclaimer = services.NewReclaimer(
		repo,
		services.NewSharedAssetGuard(repo),
		store,
		config.RetentionPolicy,
		c.clock,
		c.metrics,
		logger,
	)

	if config.ReclaimMode == ReclaimModeSync {
		c.scheduler = jobs.NewInlineScheduler(c.reclaimer, config.ReclaimTimeout, logger)
	} else {
		c.queue = jobs.NewReclamationQueue(c.reclaimer, config.ReclaimQueueSize, 0, config.ReclaimTimeout, logger)
		c.scheduler = c.queue
	}

	return c
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.repo, c.clock, c.config.OrderTTL)
}

func (c *CompositionRoot) CreateReprintOrderCommandHandler() commands.ReprintOrderCommandHandler {
	return commands.NewReprintOrderCommandHandler(c.repo, c.clock, c.config.OrderTTL, c.logger)
}

func (c *CompositionRoot) CreateOpenPaymentCommandHandler() commands.OpenPaymentCommandHandler {
	return commands.NewOpenPaymentCommandHandler(c.repo, c.gateway, c.config.MaxTransitionAttempts)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	allocator := services.NewPickupCodeAllocator(c.repo, services.DefaultMaxCodeAttempts)
	return commands.NewConfirmPaymentCommandHandler(c.repo, c.gateway, allocator, c.config.MaxTransitionAttempts, c.logger)
}

func (c *CompositionRoot) CreateAttachAssetsCommandHandler() commands.AttachAssetsCommandHandler {
	return commands.NewAttachAssetsCommandHandler(c.repo, c.config.MaxTransitionAttempts)
}

func (c *CompositionRoot) CreateMarkPrintedCommandHandler() commands.MarkPrintedCommandHandler {
	return commands.NewMarkPrintedCommandHandler(c.repo, c.clock, c.scheduler, c.config.MaxTransitionAttempts, c.logger)
}

func (c *CompositionRoot) CreateRedeemPickupCodeCommandHandler() commands.RedeemPickupCodeCommandHandler {
	if c.config.DiagnosticReprint {
		c.logger.Warn("Diagnostic reprint mode is enabled: printing orders can be redeemed again")
	}
	return commands.NewRedeemPickupCodeCommandHandler(
		c.repo, c.clock, c.metrics, c.config.MaxTransitionAttempts, c.config.DiagnosticReprint, c.logger,
	)
}

func (c *CompositionRoot) CreateSweepOrdersCommandHandler() commands.SweepOrdersCommandHandler {
	return commands.NewSweepOrdersCommandHandler(c.repo, c.reclaimer, c.clock, c.metrics, commands.SweepSettings{
		TTL:                   c.config.OrderTTL,
		CompletedRetention:    c.config.CompletedRetention,
		Concurrency:           c.config.SweepConcurrency,
		BatchSize:             c.config.SweepBatchSize,
		ReclaimTimeout:        c.config.ReclaimTimeout,
		MaxTransitionAttempts: c.config.MaxTransitionAttempts,
		FailureBackoff:        c.config.SweepFailureBackoff,
	}, c.logger)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.repo)
}

// CreateHTTPServer builds the REST adapter over every use case.
func (c *CompositionRoot) CreateHTTPServer() *kioskhttp.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	reprintOrder := c.CreateReprintOrderCommandHandler()
	openPayment := c.CreateOpenPaymentCommandHandler()
	confirmPayment := c.CreateConfirmPaymentCommandHandler()
	attachAssets := c.CreateAttachAssetsCommandHandler()
	markPrinted := c.CreateMarkPrintedCommandHandler()
	redeem := c.CreateRedeemPickupCodeCommandHandler()

	return kioskhttp.NewServer(kioskhttp.Handlers{
		CreateOrder:    &createOrder,
		ReprintOrder:   &reprintOrder,
		OpenPayment:    &openPayment,
		ConfirmPayment: &confirmPayment,
		AttachAssets:   &attachAssets,
		MarkPrinted:    &markPrinted,
		RedeemPickup:   &redeem,
		GetOrderStatus: c.CreateGetOrderStatusQueryHandler(),
	}, c.MetricsHandler())
}

// CreateJobManager builds the sweep job and, in async mode, the reclamation queue.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	sweep := c.CreateSweepOrdersCommandHandler()
	job := jobs.NewReclamationJob(&sweep, c.config.SweepSchedule, c.logger)
	return jobs.NewJobManager(job, c.queue)
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return c.metrics.Handler()
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/config"
	redislock "github.com/mohammadpnp/candidate-import/internal/infrastructure/lock/redis"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/queue/rabbitmq"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/registration"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/storage/minio"
	httpecho "github.com/mohammadpnp/candidate-import/internal/interfaces/http/echo"
)

var ErrRegistrationURLRequired = errors.New("REGISTRATION_SERVICE_URL is required")

// Components is the wired import pipeline of one process.
type Components struct {
	Store    *repository.ImportStore
	Refs     *repository.ReferenceStore
	Archive  app.UploadArchive
	Handler  *httpecho.BulkImportHandler
	Executor *app.BatchExecutor
	Sweeper  *app.Sweeper

	dispatcher app.Dispatcher
	queue      *app.JobQueue
	consumer   *rabbitmq.Consumer
	logger     *logrus.Entry
	closers    []func() error
	wg         sync.WaitGroup
}

// NewArchive returns nil when object storage is not configured.
func NewArchive(ctx context.Context, cfg *config.Configuration) (app.UploadArchive, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}
	client, err := minio.NewClient(minio.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		Secure:    cfg.S3.Secure,
	})
	if err != nil {
		return nil, err
	}
	archive, err := minio.NewArchive(ctx, client, cfg.S3.Bucket)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func NewSweeper(cfg *config.Configuration, store *repository.ImportStore, archive app.UploadArchive, logger *logrus.Entry) *app.Sweeper {
	return app.NewSweeper(store, app.SweeperConfig{
		Retention: cfg.Import.DraftRetention,
		Interval:  cfg.Import.SweepInterval,
		Archive:   archive,
		Logger:    logger.WithField("component", "sweeper"),
	})
}

func BuildComponents(ctx context.Context, cfg *config.Configuration, db *gorm.DB, pool *pgxpool.Pool, logger *logrus.Entry) (*Components, error) {
	if strings.TrimSpace(cfg.Registration.ServiceURL) == "" {
		return nil, ErrRegistrationURLRequired
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Components{
		Store:  repository.NewImportStore(db),
		Refs:   repository.NewReferenceStore(db),
		logger: logger,
	}

	c.Archive, err = NewArchive(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init upload archive: %w", err)
	}

	client, err := registration.NewClient(registration.Config{
		BaseURL: cfg.Registration.ServiceURL,
		Timeout: cfg.Registration.Timeout,
	})
	if err != nil {
		return nil, err
	}
	registrar := app.NewRetryingRegistrar(client, app.RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		Multiplier: cfg.Retry.Multiplier,
	}, logger.WithField("component", "registration"))

	locker, err := c.newLocker(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Executor = app.NewBatchExecutor(c.Store, c.Refs, registrar, app.BatchExecutorConfig{
		RowDelay: cfg.Import.RowDelay,
		Locker:   locker,
		Logger:   logger.WithField("component", "batch_executor"),
	})

	if err := c.newDispatcher(cfg); err != nil {
		c.Close()
		return nil, err
	}

	var drafts app.DraftWriter = c.Store
	if cfg.Import.UseCopy && pool != nil {
		drafts = repository.NewDraftCopyWriter(pool)
	}

	preview := app.NewPreview(c.Refs, c.Refs, drafts, app.PreviewConfig{
		PreviewRows: cfg.Import.PreviewRows,
		Validator: app.ValidatorConfig{
			DefaultCountryCode: cfg.Import.DefaultCountryCode,
			Location:           loc,
		},
		Archive: c.Archive,
		Logger:  logger.WithField("component", "preview"),
	})
	execute := app.NewExecute(c.Store, c.Refs, c.dispatcher, logger.WithField("component", "execute"))
	c.Handler = httpecho.NewBulkImportHandler(preview, execute, app.NewGetStatus(c.Store), app.NewGetRows(c.Store))
	c.Sweeper = NewSweeper(cfg, c.Store, c.Archive, logger)

	return c, nil
}

func (c *Components) newLocker(ctx context.Context, cfg *config.Configuration) (app.AccountLocker, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return app.NewLocalAccountLocker(), nil
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	c.closers = append(c.closers, client.Close)

	return redislock.NewAccountLocker(client, redislock.Config{
		TTL:    cfg.AccountLockTTL,
		Logger: c.logger,
	}), nil
}

func (c *Components) newDispatcher(cfg *config.Configuration) error {
	if cfg.Import.Queue != config.QueueRabbitMQ {
		c.queue = app.NewJobQueue(c.Executor, app.JobQueueConfig{
			Workers:  cfg.Import.Workers,
			Capacity: cfg.Import.QueueCapacity,
			Logger:   c.logger.WithField("component", "job_queue"),
		})
		c.dispatcher = c.queue
		return nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	c.closers = append(c.closers, conn.Close)

	publisher, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, publisher.Close)

	consumer, err := rabbitmq.NewConsumer(conn, c.Executor, rabbitmq.ConsumerConfig{
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		Queue:      cfg.RabbitMQ.Queue,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.closers = append(c.closers, consumer.Close)

	c.dispatcher = publisher
	c.consumer = consumer
	return nil
}

// Start launches the execution workers and the sweeper.
func (c *Components) Start(ctx context.Context) {
	if c.queue != nil {
		c.queue.Start(ctx)
	}
	if c.consumer != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.consumer.Start(ctx); err != nil {
				c.logger.WithError(err).Error("rabbitmq consumer stopped")
			}
		}()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.Sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("sweeper stopped")
		}
	}()

	// The broker keeps undelivered messages itself; only the in-process
	// queue loses QUEUED jobs on restart.
	if c.queue != nil {
		if _, err := app.RedispatchQueued(ctx, c.Store, c.queue, c.logger); err != nil {
			c.logger.WithError(err).Warn("redispatch queued jobs failed")
		}
	}
}

// Wait blocks until the workers started by Start have returned.
func (c *Components) Wait() {
	if c.queue != nil {
		c.queue.Wait()
	}
	c.wg.Wait()
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.WithError(err).Warn("close component failed")
		}
	}
	c.closers = nil
}

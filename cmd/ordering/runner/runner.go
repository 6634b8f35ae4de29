/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/juneligan/techpractice/pkg/ordering/config/loader"
	"github.com/juneligan/techpractice/pkg/ordering/consumer"
	"github.com/juneligan/techpractice/pkg/ordering/metrics"
	"github.com/juneligan/techpractice/pkg/ordering/producer"
	"github.com/juneligan/techpractice/pkg/ordering/scheduler"
	"github.com/juneligan/techpractice/pkg/ordering/util/env"
	"github.com/juneligan/techpractice/pkg/ordering/util/logging"
	"github.com/juneligan/techpractice/version"
)

const (
	// DefaultPassDelay is the pass delay of the bundled application, much shorter than the library default.
	DefaultPassDelay = 10 * time.Millisecond
	// DefaultMetricsPort is the port serving /metrics. Zero disables the endpoint.
	DefaultMetricsPort = 9090

	defaultShutdownTimeout = 5 * time.Second
)

var (
	outputCapacity = flag.Int(
		"output-capacity",
		scheduler.DefaultOutputCapacity,
		"Maximum number of messages held by the output queue")
	passDelay = flag.Duration(
		"pass-delay",
		DefaultPassDelay,
		"Wait before each scheduling pass")
	runMode = flag.String(
		"run-mode",
		string(scheduler.RunModeIndefinite),
		"Scheduler run mode, either 'once' or 'indefinite'")
	messageCount = flag.Int(
		"message-count",
		producer.DefaultMessageCount,
		"Number of messages produced at startup")
	channelCount = flag.Int(
		"channel-count",
		producer.DefaultChannelCount,
		"Number of channels the produced messages are spread across")
	consumerInterval = flag.Duration(
		"consumer-interval",
		consumer.DefaultInterval,
		"Wait before each consumer batch")
	consumerBatches = flag.Int(
		"consumer-batches",
		consumer.DefaultBatches,
		"Number of batches consumed before shutting down. Zero consumes until the process is signalled")
	metricsPort = flag.Int(
		"metrics-port",
		DefaultMetricsPort,
		"The metrics port. Zero disables the metrics endpoint")
	configFile = flag.String(
		"config-file",
		"",
		"The path to the configuration file. Overrides the scheduler flags when set")
	configText = flag.String(
		"config-text",
		"",
		"The configuration specified as text, in lieu of a file")
	logVerbosity = flag.Int("v", logging.DEFAULT, "number for the log level verbosity")

	setupLog = ctrl.Log.WithName("setup")
)

// NewRunner initializes a new ordering Runner and returns its pointer.
func NewRunner() *Runner {
	return &Runner{clock: clock.RealClock{}}
}

// Runner wires the scheduler, a producer, a consumer and the metrics endpoint into one process.
type Runner struct {
	schedulerConfig *scheduler.Config
	clock           clock.Clock
}

// WithSchedulerConfig overrides the configuration otherwise built from flags or the config file.
func (r *Runner) WithSchedulerConfig(schedulerConfig *scheduler.Config) *Runner {
	r.schedulerConfig = schedulerConfig
	return r
}

// WithClock replaces the real clock.
func (r *Runner) WithClock(clk clock.Clock) *Runner {
	r.clock = clk
	return r
}

// bindEnvToFlags loads env vars into the flag variables before parsing, so explicit flags still win. Values that do
// not parse are logged and leave the flag default in place.
func bindEnvToFlags(logger logr.Logger) {
	*outputCapacity = env.GetEnvInt("OUTPUT_CAPACITY", *outputCapacity, logger)
	*passDelay = env.GetEnvDuration("PASS_DELAY", *passDelay, logger)
	*runMode = env.GetEnvString("RUN_MODE", *runMode, logger)
	*messageCount = env.GetEnvInt("MESSAGE_COUNT", *messageCount, logger)
	*channelCount = env.GetEnvInt("CHANNEL_COUNT", *channelCount, logger)
	*consumerInterval = env.GetEnvDuration("CONSUMER_INTERVAL", *consumerInterval, logger)
	*consumerBatches = env.GetEnvInt("CONSUMER_BATCHES", *consumerBatches, logger)
	*metricsPort = env.GetEnvInt("METRICS_PORT", *metricsPort, logger)
	*configFile = env.GetEnvString("CONFIG_FILE", *configFile, logger)
}

func (r *Runner) Run(ctx context.Context) error {
	// Defaults already baked into flag declarations
	// Load env vars as "soft" overrides
	bindEnvToFlags(setupLog)

	opts := zap.Options{
		Development: env.GetEnvBool("LOG_DEVELOPMENT", true, setupLog),
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	initLogging(&opts)

	setupLog.Info("Ordering build", "commit-sha", version.CommitSHA, "build-ref", version.BuildRef)

	if err := validateFlags(); err != nil {
		setupLog.Error(err, "Failed to validate flags")
		return err
	}

	// Print all flag values
	flags := make(map[string]any)
	flag.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = f.Value
	})
	setupLog.Info("Flags processed", "flags", flags)

	config, err := r.loadSchedulerConfig()
	if err != nil {
		setupLog.Error(err, "Failed to load scheduler configuration")
		return err
	}
	setupLog.Info("Scheduler configuration", "config", config)

	metrics.Register()
	metrics.RecordOrderingInfo(version.CommitSHA, version.BuildRef)

	logger := ctrl.Log.WithName("ordering").WithValues("runID", uuid.NewString())
	return r.run(log.IntoContext(ctx, logger), config)
}

// run starts every component and blocks until the consumer is done, a component fails or ctx is cancelled.
func (r *Runner) run(ctx context.Context, config *scheduler.Config) error {
	logger := log.FromContext(ctx)
	sched, err := scheduler.NewScheduler(config, r.clock, logger)
	if err != nil {
		return err
	}
	prod := producer.NewProducer(sched, producer.GenerateMessages(*messageCount, *channelCount), logger)
	cons := consumer.NewConsumer(sched.OutputQueue(), r.clock, *consumerInterval, *consumerBatches, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})
	g.Go(func() error {
		produced := prod.Run(ctx)
		logger.Info("Producer finished", "produced", produced)
		return nil
	})
	g.Go(func() error {
		cons.Run(ctx)
		logger.Info("Consumer finished", "consumed", cons.Consumed(), "stats", sched.Stats())
		if *consumerBatches > 0 {
			// The consumer is the last stage; once it is done nothing else needs to run.
			cancel()
		}
		return nil
	})
	if *metricsPort != 0 {
		g.Go(func() error {
			return runMetricsServer(ctx, *metricsPort, logger)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error(err, "Ordering module stopped with an error")
		return err
	}
	logger.Info("Ordering module stopped")
	return nil
}

func (r *Runner) loadSchedulerConfig() (*scheduler.Config, error) {
	if r.schedulerConfig != nil {
		return r.schedulerConfig, nil
	}
	if *configFile != "" {
		return loader.LoadConfigFile(*configFile, setupLog)
	}
	if *configText != "" {
		return loader.LoadConfig([]byte(*configText), setupLog)
	}

	mode, err := scheduler.ParseRunMode(*runMode)
	if err != nil {
		return nil, err
	}
	return scheduler.NewConfig(
		scheduler.WithOutputCapacity(*outputCapacity),
		scheduler.WithPassDelay(*passDelay),
		scheduler.WithRunMode(mode),
	)
}

func runMetricsServer(ctx context.Context, port int, logger logr.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownTimeout := env.GetEnvDuration("METRICS_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, logger)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "Failed to shut down metrics server")
		}
	}()

	logger.Info("Serving metrics", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed - %w", err)
	}
	return nil
}

func initLogging(opts *zap.Options) {
	// Unless -zap-log-level is explicitly set, use -v
	useV := true
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "zap-log-level" {
			useV = false
		}
	})
	if useV {
		opts.Level = logging.LevelForVerbosity(*logVerbosity)
	}
	logging.InitLogging(opts)
}

func validateFlags() error {
	if *configText != "" && *configFile != "" {
		return fmt.Errorf("both the %q and %q flags can not be set at the same time", "config-text", "config-file")
	}
	if *messageCount < 0 {
		return fmt.Errorf("%q must not be negative, got %d", "message-count", *messageCount)
	}
	if *channelCount <= 0 {
		return fmt.Errorf("%q must be positive, got %d", "channel-count", *channelCount)
	}
	if *consumerBatches < 0 {
		return fmt.Errorf("%q must not be negative, got %d", "consumer-batches", *consumerBatches)
	}
	if *consumerBatches == 0 && *consumerInterval <= 0 {
		return fmt.Errorf("%q must be positive when %q is 0, got %v", "consumer-interval", "consumer-batches", *consumerInterval)
	}
	if *metricsPort < 0 || *metricsPort > 65535 {
		return fmt.Errorf("%q must be a valid port, got %d", "metrics-port", *metricsPort)
	}
	return nil
}

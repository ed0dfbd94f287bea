package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/whatsacomputertho/elevator-optimization/internal/breaker"
	"github.com/whatsacomputertho/elevator-optimization/internal/config"
	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
	"github.com/whatsacomputertho/elevator-optimization/internal/httpapi"
	"github.com/whatsacomputertho/elevator-optimization/internal/logging"
	"github.com/whatsacomputertho/elevator-optimization/internal/observability"
	"github.com/whatsacomputertho/elevator-optimization/internal/runner"
	"github.com/whatsacomputertho/elevator-optimization/internal/telemetry"
)

func main() {
	propsPath := flag.String("properties", "", "properties file path (overrides SIM_PROPERTIES)")
	floors := flag.Int("floors", 0, "override building.floors")
	ticks := flag.Int("ticks", 0, "override sim.ticks")
	seed := flag.Int64("seed", 0, "override building.seed")
	flag.Parse()

	logger := logging.Init()
	logger.Info("elevator simulator starting")

	var cfg config.SimConfig
	var err error
	if *propsPath != "" {
		cfg, err = config.LoadFile(*propsPath, logger)
	} else {
		cfg, err = config.Load(logger)
	}
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}
	if *floors > 0 {
		cfg.Floors = *floors
	}
	if *ticks > 0 {
		cfg.Ticks = *ticks
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	engCfg, err := cfg.EngineConfig()
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}
	building, err := engine.New(engCfg, logger)
	if err != nil {
		logger.Error("invalid building configuration", "err", err)
		os.Exit(1)
	}

	runID := uuid.New().String()
	var pub telemetry.Publisher
	switch cfg.Publisher {
	case "kafka":
		pub = telemetry.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicPrefix+"."+runID, logger)
	case "mqtt":
		pub, err = telemetry.NewMQTTPublisher(cfg.MQTTBroker, "elevator/ticks/"+runID, logger)
		if err != nil {
			logger.Error("mqtt connect failed", "err", err)
			os.Exit(1)
		}
	default:
		pub = telemetry.NopPublisher{}
	}
	defer pub.Close()

	br := breaker.New("telemetry", breaker.Config{}, logger)
	obs := observability.NewMetrics()
	run := runner.New(building, runner.Config{
		Ticks:    cfg.Ticks,
		Drain:    cfg.Drain,
		Interval: cfg.TickInterval,
	}, runID, pub, br, obs, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	run.Start(ctx)

	api := httpapi.NewServer(run, obs, logger)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: api.Router()}
	go func() {
		logger.Info("http listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			cancel()
		}
	}()

	select {
	case <-stop:
		logger.Info("shutdown signal received")
		cancel()
		<-run.Done()
	case <-run.Done():
		if err := run.Err(); err != nil {
			logger.Error("run aborted", "err", err)
		}
		sum := run.Summary()
		logger.Info("run summary",
			"ticks", sum.Ticks, "arrivals", sum.Arrivals, "departures", sum.Departures,
			"boardings", sum.Boardings, "totalEnergy", sum.TotalEnergy,
			"meanEnergyPerTick", sum.MeanEnergyPerTick, "drained", sum.Drained,
			"meanWaitTime", sum.Metrics.MeanWaitTime, "maxWaitTime", sum.Metrics.MaxWaitTime)
	}

	_ = srv.Shutdown(context.Background())
	time.Sleep(300 * time.Millisecond)
	logger.Info("shutdown complete")
}

// cmd/thermalog/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/floriangmeiner/thermal-logger/internal/acquire"
	"github.com/floriangmeiner/thermal-logger/internal/config"
	"github.com/floriangmeiner/thermal-logger/internal/device"
	"github.com/floriangmeiner/thermal-logger/internal/observability"
	"github.com/floriangmeiner/thermal-logger/internal/transport"
	"github.com/floriangmeiner/thermal-logger/internal/writer"
)

func main() {
	logger := device.NewDefaultLogger(os.Getenv("THERMALOG_DEBUG") != "")
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		logger.Fatalf("usage: thermalog <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		logger.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("acquisition failed: %v", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	recorded := cfg.Acquisition.Mode == config.ModeRecorded

	// --------------------
	// Output file
	// --------------------

	path := outputPath(cfg, recorded)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	// --------------------
	// Metrics endpoint (optional)
	// --------------------

	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = observability.New(nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warnf("metrics endpoint failed: %v", err)
			}
		}()
	}

	// --------------------
	// Device connection
	// --------------------

	conn, err := transport.Open(transport.Config{Port: cfg.Device.Port})
	if err != nil {
		return err
	}

	client := device.NewClient(conn,
		device.WithTimeout(time.Duration(cfg.Device.TimeoutMs)*time.Millisecond),
		device.WithLogger(logger),
	)
	defer client.Close()

	info, err := client.Connect()
	if err != nil {
		return err
	}
	logger.Infof("connected to %s on %s", info, cfg.Device.Port)

	if cfg.Device.SyncClock {
		if err := client.SyncTime(time.Now()); err != nil {
			logger.Warnf("clock sync failed: %v", err)
		}
	}

	// --------------------
	// Acquisition session
	// --------------------

	mode := acquire.ModeRealtime
	if recorded {
		mode = acquire.ModeRecorded
	}

	session, err := acquire.New(acquire.Config{
		Mode:       mode,
		Interval:   time.Duration(cfg.Acquisition.IntervalMs) * time.Millisecond,
		Duration:   time.Duration(cfg.Acquisition.DurationS * float64(time.Second)),
		MaxRetries: cfg.Acquisition.MaxRetries,
	}, client,
		acquire.WithLogger(logger),
		acquire.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Infof("logging data to %s (run %s)", path, session.RunID())

	out := make(chan device.Sample)
	done := make(chan acquire.Summary, 1)
	go func() {
		done <- session.Run(ctx, out)
		close(out)
	}()

	csvw := writer.NewCSV(f, recorded)
	count := 0
	for sample := range out {
		if err := csvw.Write(sample); err != nil {
			// The device keeps its pacing; the run stops at the next
			// inter-sample boundary.
			logger.Errorf("csv write failed, stopping run: %v", err)
			cancel()
			continue
		}
		count++
		logger.Infof("sample %d: %s", count, sample)
	}

	sum := <-done
	logger.Infof("%s", sum)

	if sum.State == acquire.StateFailed {
		return fmt.Errorf("%s ended with %d samples: %w", sum.Mode, sum.Samples, sum.Err)
	}
	return nil
}

// outputPath mirrors the historical naming scheme: auto-generated,
// timestamped filenames unless the runfile names one.
func outputPath(cfg *config.Config, recorded bool) string {
	name := cfg.Output.File
	if name == "" {
		stamp := time.Now().Format("20060102_150405")
		if recorded {
			name = "thermal_recorded_" + stamp + ".csv"
		} else {
			name = "thermal_data_" + stamp + ".csv"
		}
	}
	return filepath.Join(cfg.Output.Dir, name)
}

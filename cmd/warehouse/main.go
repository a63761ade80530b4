// Command warehouse builds the Olist star schema from a raw snapshot,
// validates it, writes the validation report and publishes every table to the
// configured SQL backend.
//
// Exit status: 0 when the run completes (findings included), 3 when
// -fail-on-findings is set and an error-severity rule failed, 1 on any fatal
// error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"elt/internal/config"
	"elt/internal/logging"
	"elt/internal/metrics"
	"elt/internal/metrics/datadog"
	"elt/internal/metrics/prompush"
	"elt/internal/validate"

	// register all backends with the storage factory.
	_ "elt/internal/storage/all"
)

const (
	exitOK       = 0
	exitFatal    = 1
	exitFindings = 3
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validateOnly      bool
		opts              options
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/olist.json", "pipeline config path (.json, .yaml or .yml)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use: pushgateway, datadog or none (overrides env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&opts.FailOnFindings, "fail-on-findings", false, "exit 3 when an error-severity rule fails")
	flag.BoolVar(&opts.Summary, "summary", false, "print the analytics summary to stdout")
	flag.BoolVar(&opts.SkipPublish, "no-publish", false, "build and validate without writing to storage")
	flag.StringVar(&opts.LockPath, "lock", "", "run lock file (default: derived from a sqlite DSN)")
	env := flag.String("env", envOr("WAREHOUSE_ENV", "development"), "logging environment: development or production")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	log := logging.New(*env, *verbose)

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Error("configuration is invalid", zap.String("config", cfgPath))
		_ = log.Sync()
		os.Exit(exitFatal)
	}
	if validateOnly {
		if _, err := validate.CompileCustom(p.Validation.CustomRules); err != nil {
			log.Error("configuration is invalid", zap.String("config", cfgPath), zap.Error(err))
			_ = log.Sync()
			os.Exit(exitFatal)
		}
		log.Info("configuration is valid", zap.String("config", cfgPath))
		_ = log.Sync()
		os.Exit(exitOK)
	}

	flush := setupMetrics(log, p.Job, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rep, err := run(ctx, p, opts, log, os.Stdout)
	stop()
	flush()

	code := exitCode(rep, err, opts.FailOnFindings)
	if err != nil {
		log.Error("run failed", zap.Error(err))
	}
	_ = log.Sync()
	os.Exit(code)
}

// exitCode maps a run outcome to the process exit status.
func exitCode(rep *Report, err error, failOnFindings bool) int {
	switch {
	case err != nil:
		return exitFatal
	case failOnFindings && rep != nil && !rep.Validation.Passed:
		return exitFindings
	default:
		return exitOK
	}
}

// setupMetrics installs the selected backend and returns its flush func.
// Selection order for each setting is flag, then environment, then default.
func setupMetrics(log *zap.Logger, job, backendFlg, gwFlg, ddFlg string) func() {
	backendName := backendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	jobName := job
	if jobName == "" {
		jobName = "warehouse"
	}

	var (
		b   metrics.Backend
		err error
	)
	switch backendName {
	case "pushgateway":
		gwURL := firstNonEmpty(gwFlg, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(jobName, gwURL)
		log.Info("metrics: pushgateway", zap.String("url", gwURL), zap.String("job", jobName))
	case "datadog":
		addr := firstNonEmpty(ddFlg, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{Addr: addr, Job: jobName})
		log.Info("metrics: datadog", zap.String("addr", addr))
	case "", "none":
		log.Debug("metrics: disabled", zap.String("backend", backendName))
		return func() {}
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", backendName))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: failed to init backend; using nop", zap.String("backend", backendName), zap.Error(err))
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", zap.Error(err))
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(exitFatal)
}

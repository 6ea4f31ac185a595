package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/flakescan/flakescan"
	"github.com/flakescan/flakescan/exitcodes"
	"github.com/flakescan/flakescan/flags"
	"github.com/flakescan/flakescan/reporting"
	"github.com/flakescan/flakescan/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "flakescan"
	app.Usage = "Flaky Test Detector"
	app.Description = "flakescan runs a test suite repeatedly and classifies each test as stable, flaky or failing"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if flakescan.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if flakescan.IsUnreliableTestsError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.UnreliableTests))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.UnreliableTests))
			}
		}
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up open telemetry")
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}

func run(ctx *cli.Context) error {
	if err := flags.CheckRequired(ctx); err != nil {
		return flakescan.NewRuntimeError(err)
	}

	log, err := newLogger(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return flakescan.NewRuntimeError(err)
	}

	cfg, err := flakescan.NewConfig(ctx, log)
	if err != nil {
		return flakescan.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	svc := service.New(
		ctx.String(flags.HealthzAddr.Name),
		ctx.String(flags.MetricsAddr.Name),
		log,
	)
	svc.Start(ctx.Context)
	defer svc.Shutdown()

	detector, err := flakescan.NewDetector(cfg)
	if err != nil {
		return err
	}

	report, err := detector.Run(ctx.Context)
	if err != nil {
		return err
	}

	if err := writeReport(cfg, detector, report); err != nil {
		return flakescan.NewRuntimeError(err)
	}

	if report.HasUnreliableTests() {
		summary := report.Summary()
		return flakescan.NewUnreliableTestsError(summary.Flaky, summary.Failing)
	}
	return nil
}

// writeReport renders the report to the terminal, the artifact directory,
// and the optional --output file.
func writeReport(cfg *flakescan.Config, detector *flakescan.Detector, report *reporting.Report) error {
	sinks := []reporting.Sink{
		&reporting.TableSink{W: os.Stdout},
	}
	if cfg.OutputPath != "" {
		sinks = append(sinks, &reporting.FileSink{Path: cfg.OutputPath})
	} else {
		sinks = append(sinks, &reporting.WriterSink{W: os.Stdout})
	}
	if err := reporting.Save(report, sinks...); err != nil {
		return err
	}

	var formatter reporting.TextFormatter
	path, err := detector.WriteReportArtifact("report.txt", []byte(formatter.Format(report)))
	if err != nil {
		return err
	}
	cfg.Log.WithField("path", path).Info("report archived")
	return nil
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log := logrus.New()
	log.SetLevel(lvl)
	return log, nil
}

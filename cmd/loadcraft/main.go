// Command loadcraft drives a single HTTP load test against a target URL,
// demonstrating the engine as a library: build a TestCase, wire sinks and
// output files, hand it to a Runner.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/loadcraft/cli/config"
	"github.com/justapithecus/loadcraft/export"
	"github.com/justapithecus/loadcraft/log"
	"github.com/justapithecus/loadcraft/reporter"
	"github.com/justapithecus/loadcraft/runner"
	"github.com/justapithecus/loadcraft/sink/terminal"
	"github.com/justapithecus/loadcraft/testcase"
	"github.com/justapithecus/loadcraft/types"
)

func main() {
	app := &cli.App{
		Name:  "loadcraft",
		Usage: "run a programmable HTTP load test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true, Usage: "target URL for the Load step"},
			&cli.UintFlag{Name: "rate", Value: 5, Usage: "concurrent requests per batch"},
			&cli.DurationFlag{Name: "during", Value: 10 * time.Second, Usage: "total duration of the Load stage"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "period between batches"},
			&cli.StringFlag{Name: "output-dir", Value: "output", Usage: "directory export files are written into"},
			&cli.DurationFlag{Name: "reporting-frequency", Value: reporter.DefaultReportingFrequency, Usage: "action dispatch throttle window"},
			&cli.BoolFlag{Name: "summary", Usage: "print the final report to stdout"},
			&cli.BoolFlag{Name: "quiet", Usage: "disable the default terminal sink"},
			&cli.StringFlag{Name: "config", Usage: "path to a loadcraft.yaml overriding the flag defaults above"},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	url := c.String("url")

	outputDir := c.String("output-dir")
	reportingFrequency := c.Duration("reporting-frequency")
	useSummary := c.Bool("summary")
	useDefaultSink := !c.Bool("quiet")
	useDefaultOutputFiles := true

	if path := c.String("config"); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loadcraft: %w", err)
		}
		if fileCfg.OutputDirectory != "" {
			outputDir = fileCfg.OutputDirectory
		}
		if fileCfg.ReportingFrequency.Duration() != 0 {
			reportingFrequency = fileCfg.ReportingFrequency.Duration()
		}
		useSummary = useSummary || fileCfg.UseSummary
		useDefaultSink = useDefaultSink && fileCfg.UseDefaultSink
		useDefaultOutputFiles = fileCfg.UseDefaultOutputFiles
	}

	loadAction := func(ctx context.Context, target string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return types.Failure(resp.StatusCode)
		}
		return nil
	}

	stage := types.Stage{
		Name:     "load",
		During:   c.Duration("during"),
		Interval: c.Duration("interval"),
		Rate:     c.Uint("rate"),
	}

	tc := testcase.New[string]("loadcraft-run", "cli", url)
	tc.WithStep(testcase.NewLoadStep("load", loadAction, stage))

	var sinks []reporter.Sink
	if useDefaultSink {
		sinks = append(sinks, terminal.New())
	}

	logger := log.NewLogger(log.RunContext{TestName: tc.TestName, TestSuite: tc.TestSuite})

	var outputSpecs []export.OutputSpec
	if useDefaultOutputFiles {
		outputSpecs = withDirectory(export.DefaultOutputSpecs(), outputDir)
	}

	runnerCfg := runner.Config{
		Sinks:              sinks,
		OutputSpecs:        outputSpecs,
		UseSummary:         useSummary,
		ReportingFrequency: reportingFrequency,
		Logger:             logger,
	}

	status, err := runner.Run(runner.New(runnerCfg), tc)
	if err != nil {
		return fmt.Errorf("loadcraft: run failed: %w", err)
	}

	fmt.Printf("session %s: %d hits (%d failed)\n", status.SessionID, status.Metrics.AllHits, status.Metrics.NegativeHits)
	return nil
}

func withDirectory(specs []export.OutputSpec, dir string) []export.OutputSpec {
	out := make([]export.OutputSpec, len(specs))
	for i, s := range specs {
		s.Destination.Directory = dir
		out[i] = s
	}
	return out
}

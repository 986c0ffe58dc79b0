/*
Copyright 2026 Nscale.

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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/unikorn-cloud/foody/pkg/constants"
	"github.com/unikorn-cloud/foody/pkg/sequencer"
	"github.com/unikorn-cloud/foody/test/api"
	"github.com/unikorn-cloud/foody/test/api/foody"
)

const (
	exitFailed = 1
	exitConfig = 2
)

func newLogger(debug bool) (logr.Logger, func(), error) {
	zapConfig := zap.NewProductionConfig()

	if debug {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Discard(), nil, err
	}

	return zapr.NewLogger(zapLogger), func() { _ = zapLogger.Sync() }, nil
}

func writeReport(path string, report *sequencer.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func run(debug bool, reportFile string) int {
	config, err := api.LoadTestConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	logger, sync, err := newLogger(debug || config.DebugLogging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	defer sync()

	log := logger.WithName("init")
	log.Info("service starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	if config.SkipIntegration {
		log.Info("SKIP_INTEGRATION is set, nothing to do")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := foody.Run(ctx, config, logger.WithName("foody"))
	if err != nil {
		log.Error(err, "unable to run suite")
		return exitFailed
	}

	report.Render(os.Stdout)

	if reportFile != "" {
		if err := writeReport(reportFile, report); err != nil {
			log.Error(err, "unable to write report", "path", reportFile)
			return exitFailed
		}
	}

	if !report.Passed() {
		return exitFailed
	}

	return 0
}

func main() {
	var (
		debug      bool
		reportFile string
	)

	pflag.BoolVar(&debug, "debug", false, "Enable debug logging.")
	pflag.StringVar(&reportFile, "report-file", "", "Write the run report as JSON to this path.")
	pflag.Parse()

	os.Exit(run(debug, reportFile))
}

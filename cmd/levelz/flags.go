package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/levelz/internal/logger"
	"github.com/samcharles93/levelz/pkg/catalog"
	"github.com/samcharles93/levelz/pkg/driver"
	"github.com/samcharles93/levelz/pkg/hwdetect"
)

var (
	logLevel     string
	logFormat    string
	kernelsDir   string
	targetName   string
	snapshotPath string
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func kernelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kernels-dir",
			Usage:       "directory containing the kernels content tree",
			Destination: &kernelsDir,
		},
		&cli.StringFlag{
			Name:        "target",
			Usage:       "force a device target instead of detecting one",
			Destination: &targetName,
		},
		&cli.StringFlag{
			Name:        "snapshot",
			Usage:       "path of the persisted device snapshot",
			Destination: &snapshotPath,
		},
	}
}

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if logFormat == "json" {
		return logger.JSON(os.Stderr, level)
	}
	return logger.Pretty(os.Stderr, level)
}

// openAPI returns the native driver binding, or nil when none was
// compiled in. Callers degrade rather than fail.
func openAPI(log logger.Logger) driver.API {
	api, err := driver.Open()
	if err != nil {
		log.Debug("driver binding unavailable", "error", err)
		return nil
	}
	return api
}

func newDetector(api driver.API, log logger.Logger) *hwdetect.Detector {
	opts := []hwdetect.Option{hwdetect.WithLogger(log)}
	if snapshotPath != "" {
		opts = append(opts, hwdetect.WithSnapshotPath(snapshotPath))
	}
	return hwdetect.New(api, opts...)
}

func newCatalog(det *hwdetect.Detector, log logger.Logger) *catalog.Catalog {
	tc := catalog.NewTargetCache(func() string {
		return det.LoadOrDetect().DeviceTarget
	})
	if targetName != "" {
		tc.Set(targetName)
	}
	opts := []catalog.Option{
		catalog.WithTargetCache(tc),
		catalog.WithLogger(log),
	}
	if kernelsDir != "" {
		opts = append(opts, catalog.WithBaseDir(kernelsDir))
	}
	return catalog.New(opts...)
}

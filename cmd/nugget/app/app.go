package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/marinegeo/goldennugget/internal/antares"
	"github.com/marinegeo/goldennugget/internal/blanket"
	"github.com/marinegeo/goldennugget/internal/export"
	"github.com/marinegeo/goldennugget/internal/storage"
)

// Run executes one conversion: parse both logger files, load the offset
// and deployment tables, align and correct the two streams, then write
// per-deployment outputs. Any data-quality error aborts before output is
// written.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	top, err := antares.ParseFile(config.Inputs.TopFile)
	if err != nil {
		return fmt.Errorf("parsing top thermistor file: %w", err)
	}
	logger.Info("parsed top thermistor file",
		slog.String("file", config.Inputs.TopFile),
		slog.String("loggerID", top.LoggerID),
		slog.String("samples", humanize.Comma(int64(len(top.Samples)))))

	bottom, err := antares.ParseFile(config.Inputs.BottomFile)
	if err != nil {
		return fmt.Errorf("parsing bottom thermistor file: %w", err)
	}
	logger.Info("parsed bottom thermistor file",
		slog.String("file", config.Inputs.BottomFile),
		slog.String("loggerID", bottom.LoggerID),
		slog.String("samples", humanize.Comma(int64(len(bottom.Samples)))))

	if len(top.Samples) == 0 || len(bottom.Samples) == 0 {
		return fmt.Errorf("logger files carry no samples")
	}

	offsets, err := blanket.LoadOffsets(config.Inputs.OffsetFile)
	if err != nil {
		return fmt.Errorf("loading offset table: %w", err)
	}

	// The deployment metadata carries Julian days without a year; the
	// recording year comes from the logger data itself.
	year := top.Samples[0].Timestamp.Year()
	windows, err := blanket.LoadDeployments(config.Inputs.DeploymentFile, year)
	if err != nil {
		return fmt.Errorf("loading deployment table: %w", err)
	}
	logger.Info("loaded reference tables",
		slog.Int("offsets", len(offsets)),
		slog.Int("deployments", len(windows)),
		slog.Int("year", year))

	dataset, err := blanket.Align(top, bottom, offsets, windows, config.Tolerance())
	if err != nil {
		return fmt.Errorf("aligning thermistor streams: %w", err)
	}

	logger.Info("aligned thermistor streams",
		slog.Group("offsets",
			slog.String("top", fmt.Sprintf("%+.4f degC", dataset.TopOffset)),
			slog.String("bottom", fmt.Sprintf("%+.4f degC", dataset.BottomOffset)),
		),
		slog.Int("windowed", dataset.Records()),
		slog.Int("unmatchedTop", dataset.UnmatchedTop),
		slog.Int("unmatchedBottom", dataset.UnmatchedBottom),
		slog.Int("outOfWindow", dataset.OutOfWindow))

	var store *storage.Store
	if config.Archive.Enabled {
		store = storage.New(config.Archive.DBPath)
		defer store.Close()
	}

	for _, group := range dataset.Groups {
		if len(group.Records) == 0 {
			logger.Warn("no records within deployment window",
				slog.String("deployment", group.Window.Label()),
				slog.Time("deployedAt", group.Window.DeployedAt),
				slog.Time("recoveredAt", group.Window.RecoveredAt))
			continue
		}

		if err := writeOutputs(config, logger, dataset, group); err != nil {
			return err
		}

		if store != nil {
			if err := archiveGroup(ctx, store, dataset, group); err != nil {
				return fmt.Errorf("archiving deployment %s: %w", group.Window.Label(), err)
			}
		}
	}

	return nil
}

func writeOutputs(config *Config, logger *slog.Logger, dataset *blanket.Dataset, group blanket.WindowGroup) error {
	label := group.Window.Label()
	stem := filepath.Join(config.Outputs.Directory, label)

	meta := export.NuggetMeta{
		TopLoggerID:    dataset.TopLoggerID,
		BottomLoggerID: dataset.BottomLoggerID,
		TopFile:        config.Inputs.TopFile,
		BottomFile:     config.Inputs.BottomFile,
		TopOffset:      dataset.TopOffset,
		BottomOffset:   dataset.BottomOffset,
	}

	writers := []struct {
		enabled bool
		path    string
		write   func(string) error
	}{
		{config.Outputs.CSV, stem + ".csv", func(p string) error { return export.WriteCSV(p, group) }},
		{config.Outputs.Mat, stem + ".mat", func(p string) error { return export.WriteMat(p, group) }},
		{config.Outputs.Nugget, stem + ".dat", func(p string) error { return export.WriteNugget(p, meta, group) }},
	}

	for _, w := range writers {
		if !w.enabled {
			continue
		}
		if err := w.write(w.path); err != nil {
			return fmt.Errorf("writing %s: %w", w.path, err)
		}

		size := "unknown"
		if fi, err := os.Stat(w.path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		logger.Info("wrote output",
			slog.String("deployment", label),
			slog.String("file", w.path),
			slog.Int("records", len(group.Records)),
			slog.String("size", size))
	}

	return nil
}

func archiveGroup(ctx context.Context, store *storage.Store, dataset *blanket.Dataset, group blanket.WindowGroup) error {
	runID, err := store.CreateRun(ctx, dataset, group.Window)
	if err != nil {
		return err
	}
	return store.StoreRecords(ctx, runID, group.Records)
}

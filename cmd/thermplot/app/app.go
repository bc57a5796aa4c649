package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/marinegeo/goldennugget/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	return plotRun(ctx, store, config, logger)
}

func plotRun(ctx context.Context, store *storage.Store, config *Config, logger *slog.Logger) error {
	run, err := store.Run(ctx, config.RunID)
	if err != nil {
		return fmt.Errorf("loading run %d: %w", config.RunID, err)
	}

	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.MinTime != nil && config.MaxTime != nil:
		opts = append(opts, storage.WithTimeRange(config.MinTime.UTC(), config.MaxTime.UTC()))

		filters = append(filters,
			slog.String("minTimestamp", config.MinTime.UTC().Format(time.DateTime)),
			slog.String("maxTimestamp", config.MaxTime.UTC().Format(time.DateTime)))

	case config.MinTime != nil:
		opts = append(opts, storage.WithStartTime(config.MinTime.UTC()))
		filters = append(filters, slog.String("minTimestamp", config.MinTime.UTC().Format(time.DateTime)))

	case config.MaxTime != nil:
		opts = append(opts, storage.WithEndTime(config.MaxTime.UTC()))
		filters = append(filters, slog.String("maxTimestamp", config.MaxTime.UTC().Format(time.DateTime)))
	}

	logger.Info("reading archived run",
		append([]any{
			slog.Int64("run", run.ID),
			slog.String("blanket", run.Blanket),
			slog.String("dive", run.Dive),
			slog.String("deployment", run.Deployment),
		}, filters...)...)

	iter, err := store.ReadRecords(ctx, config.RunID, opts...)
	if err != nil {
		return err
	}
	defer iter.Close()

	series := NewSeriesData(run)
	for iter.Next() {
		series.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return err
	}

	renderer, err := NewChartRenderer(RenderConfig{
		Width:    config.Width,
		Height:   config.Height,
		FontFile: config.FontFile,
	})
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		),
		slog.Int("records", len(series.Records)))

	img, err := renderer.Render(series)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

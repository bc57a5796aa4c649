package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath     string
	RunID      int64
	OutputFile string
	Format     ImageFormat
	FontFile   string
	Width      int
	Height     int
	MinTime    *time.Time
	MaxTime    *time.Time
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Width:  1200,
		Height: 600,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, from, to string
	flag.StringVar(&c.DBPath, "db", "", "Path to the archive database file")
	flag.Int64Var(&c.RunID, "run", 1, "Run ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&c.FontFile, "font", "", "Path to a TTF font for axis labels (labels are skipped without it)")
	flag.IntVar(&c.Width, "w", c.Width, "Plot width in pixels")
	flag.IntVar(&c.Height, "h", c.Height, "Plot height in pixels")
	flag.StringVar(&from, "from", "", "Only plot records at or after this time (2006-01-02 15:04:05, UTC)")
	flag.StringVar(&to, "to", "", "Only plot records at or before this time (2006-01-02 15:04:05, UTC)")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.RunID <= 0 {
		err = errors.New("run id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.Width < 200 || c.Height < 200 {
		err = errors.New("plot must be at least 200x200 pixels")
	}

	if err == nil && from != "" {
		var t time.Time
		if t, err = time.ParseInLocation(time.DateTime, from, time.UTC); err == nil {
			c.MinTime = &t
		}
	}
	if err == nil && to != "" {
		var t time.Time
		if t, err = time.ParseInLocation(time.DateTime, to, time.UTC); err == nil {
			c.MaxTime = &t
		}
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

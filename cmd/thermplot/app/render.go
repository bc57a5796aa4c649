package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	dpi      = 72.0
	fontSize = 12.0

	tickMarkLength = 5
	pixelsPerXTick = 150
	pixelsPerYTick = 60

	// Default border sizes in pixels
	defaultTopBorder    = 20
	defaultLeftBorder   = 70
	defaultBottomBorder = 70
	defaultRightBorder  = 20

	defaultTimeFormat = "02-Jan 15:04"
)

var (
	backgroundColor = color.White
	frameColor      = color.RGBA{A: 0xff}
	gridColor       = color.RGBA{R: 0xde, G: 0xde, B: 0xde, A: 0xff}
	topColor        = color.RGBA{R: 0xc8, G: 0x1e, B: 0x1e, A: 0xff}
	bottomColor     = color.RGBA{R: 0x1e, G: 0x3c, B: 0xc8, A: 0xff}
	diffColor       = color.RGBA{R: 0x14, G: 0x82, B: 0x3c, A: 0xff}
)

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int
	Left   int // Space for the temperature scale
	Bottom int // Space for the time scale and info lines
	Right  int
}

// RenderConfig holds all configuration options for chart rendering
type RenderConfig struct {
	Width    int
	Height   int
	FontFile string // TTF path; axis labels are skipped when empty

	TimeFormat string
	FontSize   float64
	Borders    BorderConfig
}

// ChartRenderer draws a corrected temperature run as a line chart: top
// and bottom traces plus the top−bottom differential over time.
type ChartRenderer struct {
	config  RenderConfig
	context *freetype.Context
}

// NewChartRenderer creates a renderer with the given configuration,
// loading the label font from disk when one is configured.
func NewChartRenderer(config RenderConfig) (*ChartRenderer, error) {
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	r := ChartRenderer{config: config}

	if config.FontFile != "" {
		fontBytes, err := os.ReadFile(config.FontFile)
		if err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
		parsedFont, err := freetype.ParseFont(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}

		context := freetype.NewContext()
		context.SetDPI(dpi)
		context.SetFont(parsedFont)
		context.SetFontSize(config.FontSize)
		context.SetSrc(image.NewUniform(frameColor))
		context.SetHinting(font.HintingFull)
		r.context = context
	}

	return &r, nil
}

// Render draws the chart for one run's series data.
func (r *ChartRenderer) Render(s *SeriesData) (*image.RGBA, error) {
	if len(s.Records) == 0 {
		return nil, fmt.Errorf("run %d has no records to plot", s.Run.ID)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	if r.context != nil {
		r.context.SetClip(img.Bounds())
		r.context.SetDst(img)
	}

	area := r.plotArea()
	tempMin, tempMax := s.Range()

	r.drawGrid(img, area, s, tempMin, tempMax)
	r.drawSeries(img, area, s, tempMin, tempMax)
	r.drawFrame(img, area)

	if r.context != nil {
		if err := r.drawInfo(s); err != nil {
			return nil, fmt.Errorf("drawing info: %w", err)
		}
	}

	return img, nil
}

func (r *ChartRenderer) plotArea() image.Rectangle {
	return image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Width-r.config.Borders.Right,
		r.config.Height-r.config.Borders.Bottom,
	)
}

// drawGrid draws the tick grid and, when a font is loaded, the time and
// temperature labels.
func (r *ChartRenderer) drawGrid(img *image.RGBA, area image.Rectangle, s *SeriesData, tempMin, tempMax float64) {
	xTicks := max(area.Dx()/pixelsPerXTick, 1)
	for i := 0; i <= xTicks; i++ {
		x := area.Min.X + i*area.Dx()/xTicks
		for y := area.Min.Y; y <= area.Max.Y; y++ {
			img.Set(x, y, gridColor)
		}
		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			img.Set(x, y, frameColor)
		}

		if r.context != nil {
			t := s.TimestampStart.Add(time.Duration(float64(s.Span()) * float64(i) / float64(xTicks)))
			pt := freetype.Pt(x-30, area.Max.Y+tickMarkLength+14)
			_, _ = r.context.DrawString(t.UTC().Format(r.config.TimeFormat), pt)
		}
	}

	yTicks := max(area.Dy()/pixelsPerYTick, 1)
	for i := 0; i <= yTicks; i++ {
		y := area.Max.Y - i*area.Dy()/yTicks
		for x := area.Min.X; x <= area.Max.X; x++ {
			img.Set(x, y, gridColor)
		}
		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, y, frameColor)
		}

		if r.context != nil {
			v := tempMin + (tempMax-tempMin)*float64(i)/float64(yTicks)
			pt := freetype.Pt(3, y+4)
			_, _ = r.context.DrawString(fmt.Sprintf("%7.3f C", v), pt)
		}
	}
}

func (r *ChartRenderer) drawSeries(img *image.RGBA, area image.Rectangle, s *SeriesData, tempMin, tempMax float64) {
	span := float64(s.Span())
	scale := float64(tempMax - tempMin)

	toX := func(t time.Time) int {
		return area.Min.X + int(float64(area.Dx())*float64(t.Sub(s.TimestampStart))/span)
	}
	toY := func(v float64) int {
		return area.Max.Y - int(float64(area.Dy())*(v-tempMin)/scale)
	}

	traces := []struct {
		value func(rec int) float64
		color color.Color
	}{
		{func(i int) float64 { return s.Records[i].TopTemperature }, topColor},
		{func(i int) float64 { return s.Records[i].BottomTemperature }, bottomColor},
		{func(i int) float64 { return s.Records[i].Differential }, diffColor},
	}

	for _, trace := range traces {
		prevX, prevY := toX(s.Records[0].Timestamp), toY(trace.value(0))
		for i := 1; i < len(s.Records); i++ {
			x, y := toX(s.Records[i].Timestamp), toY(trace.value(i))
			drawLine(img, prevX, prevY, x, y, trace.color)
			prevX, prevY = x, y
		}
	}
}

func (r *ChartRenderer) drawFrame(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x <= area.Max.X; x++ {
		img.Set(x, area.Min.Y, frameColor)
		img.Set(x, area.Max.Y, frameColor)
	}
	for y := area.Min.Y; y <= area.Max.Y; y++ {
		img.Set(area.Min.X, y, frameColor)
		img.Set(area.Max.X, y, frameColor)
	}
}

// drawInfo writes the run provenance line under the time axis.
func (r *ChartRenderer) drawInfo(s *SeriesData) error {
	run := s.Run
	lines := []string{
		fmt.Sprintf("Blanket %s dive %s (%s): %s records, %s to %s",
			run.Blanket, run.Dive, run.Deployment,
			humanize.Comma(int64(len(s.Records))),
			s.TimestampStart.UTC().Format(time.DateTime),
			s.TimestampEnd.UTC().Format(time.DateTime)),
		fmt.Sprintf("top %s (%+.4f C, red)  bottom %s (%+.4f C, blue)  differential (green)",
			run.TopLoggerID, run.TopOffset, run.BottomLoggerID, run.BottomOffset),
	}

	top := r.config.Height - r.config.Borders.Bottom + tickMarkLength + 30
	pt := freetype.Pt(r.config.Borders.Left, top)
	for _, line := range lines {
		if _, err := r.context.DrawString(line, pt); err != nil {
			return err
		}
		pt.Y += r.context.PointToFixed(r.config.FontSize * 1.3)
	}

	return nil
}

// drawLine draws a solid line between two points with integer DDA
// interpolation.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}

	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(dx)*float64(i)/float64(steps)))
		y := y0 + int(math.Round(float64(dy)*float64(i)/float64(steps)))
		img.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

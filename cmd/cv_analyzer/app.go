package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/user/cv_analyzer_go/internal/analysis"
	"github.com/user/cv_analyzer_go/internal/config"
	"github.com/user/cv_analyzer_go/internal/parser"
	"github.com/user/cv_analyzer_go/internal/report"
)

// watchDebounce collapses the burst of events an editor produces for one save.
const watchDebounce = 200 * time.Millisecond

// App runs the analysis pipeline for one configuration.
type App struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewApp creates a new App for cfg.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// RunResult is what one pipeline run produced.
type RunResult struct {
	Results *analysis.AnalysisResults
	Files   []string
}

func (a *App) sendStatus(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

func (a *App) parserOptions() (*parser.Options, error) {
	mt, err := parser.ParseMeasurementType(a.cfg.Input.MeasurementType)
	if err != nil {
		return nil, err
	}
	return &parser.Options{
		Delimiter:       a.cfg.Input.DelimiterRune(),
		Comment:         a.cfg.Input.Comment,
		SkipRows:        a.cfg.Input.SkipRows,
		MeasurementType: mt,
	}, nil
}

// Analyze loads the data file and runs the analysis session without writing anything.
func (a *App) Analyze(dataPath string) (*analysis.AnalysisResults, error) {
	opts, err := a.parserOptions()
	if err != nil {
		return nil, err
	}

	a.sendStatus("Parsing", "file", dataPath)
	v, err := parser.ParseVoltammogramFile(dataPath, opts)
	if err != nil {
		return nil, fmt.Errorf("error parsing data: %w", err)
	}
	a.sendStatus("Parsed voltammogram", "samples", v.Len(), "resorted", v.Resorted)
	for _, e := range v.ParseErrors {
		a.logger.Warn(e, "file", dataPath)
	}

	res, err := analysis.Analyze(v, a.cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("error analyzing data: %w", err)
	}
	a.sendStatus("Analysis complete", "rows", len(res.Rows), "smoothed", res.Smoothed)
	for _, e := range res.AnalysisErrors {
		a.logger.Warn(e)
	}
	return res, nil
}

// Run analyzes dataPath and writes the configured outputs.
func (a *App) Run(dataPath string) (*RunResult, error) {
	res, err := a.Analyze(dataPath)
	if err != nil {
		return nil, err
	}
	out := &RunResult{Results: res}
	dir, prefix := a.cfg.Output.Dir, a.cfg.Output.Prefix

	if a.cfg.Output.CSV {
		files, err := report.ExportCSV(dir, prefix, res)
		out.Files = append(out.Files, files...)
		if err != nil {
			return out, fmt.Errorf("error exporting tables: %w", err)
		}
		a.sendStatus("Tables written", "count", len(files))
	}

	if !a.cfg.Output.PDF && !a.cfg.Output.PNG {
		return out, nil
	}

	a.sendStatus("Generating plots...")
	images, warnings := report.CreatePlots(res, a.cfg.Axis)
	for _, w := range warnings {
		a.logger.Warn(w)
	}

	if a.cfg.Output.PNG {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return out, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		for key, img := range images {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, key))
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return out, fmt.Errorf("failed to write plot %s: %w", path, err)
			}
			out.Files = append(out.Files, path)
		}
	}

	if a.cfg.Output.PDF {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return out, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		pdfPath := filepath.Join(dir, prefix+"_report.pdf")
		a.sendStatus("Generating PDF", "file", pdfPath)
		info := report.ReportInfo{Source: dataPath, XLabel: a.cfg.Axis.XLabel, YLabel: a.cfg.Axis.YLabel}
		if err := report.BuildPDFReport(pdfPath, info, res, images); err != nil {
			return out, fmt.Errorf("error generating PDF report: %w", err)
		}
		out.Files = append(out.Files, pdfPath)
	}

	a.sendStatus("Run complete", "files", len(out.Files))
	return out, nil
}

// PrintCrossings writes the derivative zero crossings and branch intersections of res to w.
func PrintCrossings(w io.Writer, res *analysis.AnalysisResults) {
	section := func(title string, pts []analysis.Point) {
		fmt.Fprintf(w, "%s (%d):\n", title, len(pts))
		for _, p := range pts {
			fmt.Fprintf(w, "  x=%.6g\ty=%.6g\n", p.X, p.Y)
		}
	}
	if d := res.FirstDerivative; d != nil {
		section("First derivative zero crossings", d.Zeros())
	}
	if d := res.SecondDerivative; d != nil {
		section("Second derivative zero crossings", d.Zeros())
	}
	if res.HasIntersections {
		section("Intersections", res.Intersections)
	}
}

// Watch runs the pipeline once and again whenever the data file or the config file
// changes, until ctx is cancelled. reload is called for config changes; a failed reload
// keeps the previous configuration. Pipeline errors are logged, not returned.
func (a *App) Watch(ctx context.Context, dataPath, configPath string, reload func() (config.Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched because editors often replace files instead of writing them.
	targets := map[string]bool{}
	for _, p := range []string{dataPath, configPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}
	configAbs := ""
	if configPath != "" {
		configAbs, _ = filepath.Abs(configPath)
	}

	a.runLogged(dataPath)

	var timer *time.Timer
	var fire <-chan time.Time
	configChanged := false
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}
			a.logger.Debug("Change detected", "file", name, "op", event.Op.String())
			if name == configAbs {
				configChanged = true
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if configChanged && reload != nil {
				cfg, err := reload()
				if err != nil {
					a.logger.Error("Config reload failed, keeping previous configuration", "error", err)
				} else {
					a.cfg = cfg
					a.sendStatus("Configuration reloaded", "file", configPath)
				}
			}
			configChanged = false
			a.runLogged(dataPath)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("Watcher error", "error", err)

		case <-ctx.Done():
			a.sendStatus("Watch stopped")
			return nil
		}
	}
}

func (a *App) runLogged(dataPath string) {
	if _, err := a.Run(dataPath); err != nil {
		a.logger.Error("Run failed", "error", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
	"github.com/kkkqkx123/code-search-helper/internal/config"
	"github.com/kkkqkx123/code-search-helper/internal/engine"
	"github.com/kkkqkx123/code-search-helper/internal/metrics"
	"github.com/kkkqkx123/code-search-helper/internal/pkg/logger"
	"github.com/kkkqkx123/code-search-helper/internal/scan"
)

func chunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk [paths...]",
		Short: "Chunk files or directories into indexable fragments",
		Long: `Chunk source files into semantically coherent fragments.

File arguments are processed directly; directories are walked with the
configured include/exclude globs and processed concurrently.

Examples:
  chunkctl chunk main.go
  chunkctl chunk ./src --include '**/*.go' --exclude 'vendor/**'
  chunkctl chunk ./src --format json > chunks.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChunk,
	}

	cmd.Flags().StringSlice("include", nil, "include glob patterns (doublestar)")
	cmd.Flags().StringSlice("exclude", nil, "exclude glob patterns (doublestar)")
	cmd.Flags().IntP("workers", "w", 0, "concurrent workers for directory mode")
	cmd.Flags().String("format", "json", "output format (json, text)")
	cmd.Flags().Int("max-chunk-size", 0, "chunk size ceiling in characters")
	cmd.Flags().Int("overlap", -1, "overlap size in characters")
	cmd.Flags().String("force-strategy", "", "force a specific tier")
	cmd.Flags().Bool("no-fallback", false, "disable tier fallback")
	cmd.Flags().Int("memory-limit-mb", 0, "heap ceiling for the guard")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func runChunk(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	applyChunkFlags(cmd, cfg)

	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	var sink metrics.Sink = metrics.NopSink{}
	if cfg.Log.Level == "debug" {
		sink = metrics.NewLogSink(log)
	}

	eng, err := engine.New(cfg.Options(), sink, log)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "text" {
		return fmt.Errorf("unknown output format %q (must be json or text)", format)
	}
	out := newChunkWriter(os.Stdout, format)

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("path does not exist: %w", err)
		}
		if !info.IsDir() {
			if err := chunkOneFile(cmd.Context(), eng, path, path, out); err != nil {
				return err
			}
			continue
		}
		if err := chunkDirectory(cmd, cfg, eng, path, out, log); err != nil {
			return err
		}
	}
	return nil
}

func applyChunkFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetInt("max-chunk-size"); v > 0 {
		cfg.Chunking.MaxChunkSize = v
	}
	if v, _ := cmd.Flags().GetInt("overlap"); v >= 0 {
		cfg.Chunking.OverlapSize = v
	}
	if v, _ := cmd.Flags().GetString("force-strategy"); v != "" {
		cfg.Chunking.ForceStrategy = v
	}
	if v, _ := cmd.Flags().GetBool("no-fallback"); v {
		cfg.Chunking.EnableFallback = false
	}
	if v, _ := cmd.Flags().GetInt("memory-limit-mb"); v > 0 {
		cfg.Guard.MemoryLimitMB = v
	}
	if v, _ := cmd.Flags().GetStringSlice("include"); len(v) > 0 {
		cfg.Scan.Include = v
	}
	if v, _ := cmd.Flags().GetStringSlice("exclude"); len(v) > 0 {
		cfg.Scan.Exclude = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Scan.Workers = v
	}
}

func chunkOneFile(ctx context.Context, eng *engine.Engine, path, display string, out *chunkWriter) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	chunks, err := eng.ProcessFile(ctx, chunk.SourceUnit{Path: display, Content: content})
	if err != nil {
		return fmt.Errorf("chunking %s: %w", display, err)
	}
	return out.write(display, chunks)
}

func chunkDirectory(cmd *cobra.Command, cfg *config.Config, eng *engine.Engine, root string, out *chunkWriter, log *logger.Logger) error {
	walker := scan.NewWalker(cfg.Scan.Include, cfg.Scan.Exclude)
	files, err := walker.Walk(root)
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	if len(files) == 0 {
		log.Warn("no files matched", "root", root)
		return nil
	}

	var bar *progressbar.ProgressBar
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("chunking"),
		)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Scan.Workers)

	var failed int64
	var mu sync.Mutex

	for _, f := range files {
		f := f
		g.Go(func() error {
			err := chunkOneFile(ctx, eng, f.Path, f.Rel, out)
			mu.Lock()
			if err != nil {
				// One bad file does not abort the batch.
				log.WithError(err).Warn("skipping file", "path", f.Rel)
				failed++
			}
			if bar != nil {
				bar.Add(1)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	out.summary(os.Stderr, len(files), failed)
	return nil
}

// chunkWriter serializes chunk output across workers.
type chunkWriter struct {
	mu      sync.Mutex
	w       *os.File
	enc     *json.Encoder
	format  string
	files   int
	chunks  int
	degrade int
}

func newChunkWriter(w *os.File, format string) *chunkWriter {
	return &chunkWriter{w: w, enc: json.NewEncoder(w), format: format}
}

func (c *chunkWriter) write(path string, chunks []chunk.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files++
	c.chunks += len(chunks)
	for _, ch := range chunks {
		if ch.Degraded {
			c.degrade++
			break
		}
	}

	for _, ch := range chunks {
		if c.format == "json" {
			if err := c.enc.Encode(ch); err != nil {
				return err
			}
			continue
		}
		name := ch.Name
		if name == "" {
			name = "-"
		}
		if _, err := fmt.Fprintf(c.w, "%s:%d-%d\t%s\t%s\t%s\n",
			ch.Path, ch.StartLine, ch.EndLine, ch.Language, ch.Kind, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *chunkWriter) summary(w *os.File, total int, failed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(w, "processed %d/%d files, %d chunks (%d files degraded, %d failed)\n",
		c.files, total, c.chunks, c.degrade, failed)
}

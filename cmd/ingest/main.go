// Command ingest bulk-loads local podcast transcripts or vendor CSVs into the knowledge base.
//
//	ingest -type podcast -splitter recursive -chunk-size 5000 -chunk-overlap 500 episodes/*.pdf
//	ingest -type vendor suppliers.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/markdave123-py/weddingkb/internal/app"
	"github.com/markdave123-py/weddingkb/internal/config"
	"github.com/markdave123-py/weddingkb/internal/core"
	"github.com/markdave123-py/weddingkb/internal/core/ingestion_engine"
	"github.com/markdave123-py/weddingkb/internal/models"
)

type options struct {
	contentType  string
	splitter     string
	chunkSize    int
	chunkOverlap int
	parser       string
	paths        []string
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("config: %v", err))
		os.Exit(1)
	}
	opts := parseFlags(cfg)

	if err := run(cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ingest: %v", err))
		os.Exit(1)
	}
}

func parseFlags(cfg *config.Config) options {
	var o options
	flag.StringVar(&o.contentType, "type", "podcast", "Content type: podcast or vendor")
	flag.StringVar(&o.splitter, "splitter", string(ingestion_engine.StrategyRecursive), "Chunking strategy: recursive or character")
	flag.IntVar(&o.chunkSize, "chunk-size", cfg.DefaultChunkSize, "Chunk size in characters")
	flag.IntVar(&o.chunkOverlap, "chunk-overlap", cfg.DefaultChunkOverlap, "Chunk overlap in characters")
	flag.StringVar(&o.parser, "parser", "", "PDF parser: docconv or native (default from DEFAULT_PDF_PARSER)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	o.paths = flag.Args()
	return o
}

func run(cfg *config.Config, o options) error {
	if len(o.paths) == 0 {
		flag.Usage()
		return fmt.Errorf("no input files")
	}
	if o.contentType != string(ingestion_engine.ContentPodcast) && o.contentType != string(ingestion_engine.ContentVendor) {
		return fmt.Errorf("unknown -type %q", o.contentType)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := cfg.NewLogger()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	bar := progressbar.NewOptions(len(o.paths),
		progressbar.OptionSetDescription(color.BlueString("ingesting %ss", o.contentType)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	var results []ingestion_engine.FileResult
	var stored int
	for _, path := range o.paths {
		if ctx.Err() != nil {
			break
		}
		file, err := readUpload(path)
		if err != nil {
			results = append(results, ingestion_engine.FileResult{
				Filename: path, Stage: ingestion_engine.StageError, Error: err.Error(),
			})
			_ = bar.Add(1)
			continue
		}

		res, n, err := ingestFile(ctx, application.Ingestor, o, file)
		if err != nil {
			return err
		}
		results = append(results, res...)
		stored += n
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	printSummary(results, stored, o.contentType)
	return nil
}

// ingestFile runs one file through the ingestor. A vendor file the ingestor rejects is
// recorded as failed so the rest of the batch still runs; podcast validation errors come
// from the flags and abort the run.
func ingestFile(ctx context.Context, ing ingestion_engine.Ingestor, o options, file *models.UploadedFile) ([]ingestion_engine.FileResult, int, error) {
	if o.contentType == string(ingestion_engine.ContentVendor) {
		summary, err := ing.IngestVendors(ctx, []*models.UploadedFile{file})
		if errors.Is(err, core.ErrValidation) {
			return []ingestion_engine.FileResult{{
				Filename: file.Name, Stage: ingestion_engine.StageError, Err: err, Error: err.Error(),
			}}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return summary.Files, summary.TotalStored, nil
	}

	summary, err := ing.IngestPodcasts(ctx, ingestion_engine.PodcastRequest{
		Files: []*models.UploadedFile{file},
		Options: ingestion_engine.ChunkOptions{
			Strategy: ingestion_engine.Strategy(o.splitter),
			Size:     o.chunkSize,
			Overlap:  o.chunkOverlap,
		},
		Parser: o.parser,
	})
	if err != nil {
		return nil, 0, err
	}
	return summary.Files, summary.ChunksCount, nil
}

func readUpload(path string) (*models.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &models.UploadedFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: ingestion_engine.DetectContentType(name, ""),
		Data:        data,
	}, nil
}

func printSummary(results []ingestion_engine.FileResult, stored int, contentType string) {
	unit := "chunks"
	if contentType == string(ingestion_engine.ContentVendor) {
		unit = "vendors"
	}

	ok, failed := 0, 0
	for _, r := range results {
		switch r.Stage {
		case ingestion_engine.StageDone:
			ok++
			fmt.Printf("%s %s %s\n", color.GreenString("✔"), r.Filename,
				color.HiBlackString("(%d/%d %s stored)", r.Stored, r.Items, unit))
		case ingestion_engine.StageSkipped:
			fmt.Printf("%s %s %s\n", color.YellowString("–"), r.Filename, color.YellowString("%s", r.Error))
		default:
			failed++
			fmt.Printf("%s %s %s\n", color.RedString("✘"), r.Filename, color.RedString("%s", r.Error))
		}
	}

	fmt.Println()
	color.Cyan("%d file(s) ingested, %d failed, %d %s stored", ok, failed, stored, unit)
}

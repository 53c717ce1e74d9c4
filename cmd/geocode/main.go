package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"attractions/internal/config"
	"attractions/internal/dataset"
	"attractions/internal/enrich"
	"attractions/internal/env"
	"attractions/internal/keys"
	"attractions/internal/logging"
	"attractions/internal/models"
	"attractions/internal/storage"
	"attractions/pkg/graceful"
	"attractions/pkg/location"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	inPath       string
	outPath      string
	uploadName   string
	nominatimURL string
)

var rootCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Fill in missing attraction coordinates",
	Long: `Reads an attractions dataset, looks up coordinates for records that
lack them through Nominatim and writes the result to a file or, with
--upload, to the configured S3 bucket.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&inPath, "in", "i", "attractions.json", "dataset to read")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "attractions.geocoded.json", "file to write")
	rootCmd.Flags().StringVar(&uploadName, "upload", "", "upload to S3 as datasets/<name>.json instead of writing a file")
	rootCmd.Flags().StringVar(&nominatimURL, "nominatim", "", "Nominatim base URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logging.New(os.Stderr, "info", "console")
	env.LoadEnv(log)

	cfg, err := config.Load(os.Getenv("ATTRACTIONS_CONFIG_DIR"))
	if err != nil {
		return err
	}
	log = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := graceful.Context(cmd.Context(), log)
	defer cancel()

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	records, err := dataset.Parse(data)
	if err != nil {
		return &dataset.ParseError{Source: inPath, Err: err}
	}

	items := make([]*models.Attraction, len(records))
	for i := range records {
		items[i] = &records[i]
	}

	geocoder := location.NewGeocoder(nil, nominatimURL)
	// Nominatim's usage policy allows one request per second.
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	start := time.Now()
	pipeline := enrich.NewPipeline(log,
		enrich.NewStage("normalize", normalize),
		enrich.NewStage("geocode", geocodeStep(geocoder, limiter, log)),
	)
	failures := pipeline.ProcessAll(ctx, items)
	log.Info().Int("records", len(records)).Int64("failures", failures).Dur("took", time.Since(start)).Msg("Geocoding finished")

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if uploadName == "" {
		return os.WriteFile(outPath, out, 0o644)
	}
	return upload(ctx, cfg, log, out)
}

func normalize(_ context.Context, a *models.Attraction) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Location = strings.TrimSpace(a.Location)
	if a.State != nil {
		s := strings.TrimSpace(*a.State)
		a.State = &s
	}
	for i, c := range a.Categories {
		a.Categories[i] = strings.TrimSpace(c)
	}
	return nil
}

func geocodeStep(g *location.Geocoder, limiter *rate.Limiter, log zerolog.Logger) enrich.Step[models.Attraction] {
	return func(ctx context.Context, a *models.Attraction) error {
		if _, ok := a.Position(); ok {
			return nil
		}
		query := strings.Join(nonEmpty(a.Name, a.Location, a.Region()), ", ")
		if query == "" {
			return fmt.Errorf("%s: nothing to geocode", a)
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		loc, err := g.Geocode(ctx, query)
		if err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
		a.Coordinates = []float64{loc.Latitude, loc.Longitude}
		log.Debug().Int64("id", a.ID).Float64("lat", loc.Latitude).Float64("lon", loc.Longitude).Msg("Geocoded")
		return nil
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func upload(ctx context.Context, cfg *config.Config, log zerolog.Logger, data []byte) error {
	s3, err := storage.NewS3Service(storage.S3Options{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}, log)
	if err != nil {
		return err
	}
	if _, err := s3.CreateBucket(ctx, cfg.S3.Bucket, ""); err != nil {
		return err
	}
	key := keys.Dataset(uploadName)
	if err := s3.PutJSON(ctx, cfg.S3.Bucket, key, data); err != nil {
		return err
	}
	log.Info().Str("bucket", cfg.S3.Bucket).Str("key", key).Msg("Uploaded dataset")
	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/raykavin/quantfeat"
	"github.com/raykavin/quantfeat/pkg/dataset"
	"github.com/raykavin/quantfeat/pkg/exchange"
	"github.com/raykavin/quantfeat/pkg/exchange/binance"
	"github.com/raykavin/quantfeat/pkg/feature"
	"github.com/raykavin/quantfeat/pkg/logger"
	zerologger "github.com/raykavin/quantfeat/pkg/logger/zerolog"
	"github.com/raykavin/quantfeat/pkg/storage"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// Command line flags
var (
	// Download command flags
	pair      string
	days      int
	startDate string
	endDate   string
	timeframe string
	output    string
	cacheFile string

	// Build command flags
	input        string
	withLabels   bool
	dropWarmup   bool
	estimator    string
	artifactsDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "quantfeat",
		Short:   "Causal feature engineering for OHLCV market data",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildDownloadCmd())
	rootCmd.AddCommand(buildBuildCmd())
	rootCmd.AddCommand(buildInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (logger.Logger, error) {
	return zerologger.NewZerolog("info", "2006-01-02 15:04:05", true, false)
}

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candle data",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2024-01-01)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2024-06-30)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "4h", "Candle timeframe (e.g. 4h)")
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file")
	downloadCmd.Flags().StringVar(&cacheFile, "cache", "", "Optional candle cache database file")
	_ = downloadCmd.MarkFlagRequired("pair")
	_ = downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	spot, err := binance.NewSpot(ctx)
	if err != nil {
		return err
	}

	options := make([]exchange.DownloaderOption, 0)
	if cacheFile != "" {
		cache, err := storage.FromFile(cacheFile)
		if err != nil {
			return err
		}
		defer cache.Close()
		options = append(options, exchange.WithCache(cache))
	}

	downloader := exchange.NewDownloader(spot, log, options...)

	rangeOptions := make([]exchange.Option, 0)
	switch {
	case startDate != "" && endDate != "":
		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		rangeOptions = append(rangeOptions, exchange.WithInterval(start, end))
	case days > 0:
		rangeOptions = append(rangeOptions, exchange.WithDays(days))
	default:
		rangeOptions = append(rangeOptions, exchange.WithDays(30))
	}

	return downloader.Download(ctx, pair, timeframe, output, rangeOptions...)
}

func buildBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the causal feature table from a candle CSV file",
		RunE:  runBuild,
	}

	buildCmd.Flags().StringVarP(&input, "input", "i", "", "Input candle CSV file")
	buildCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	buildCmd.Flags().StringVarP(&output, "output", "o", "", "Output feature CSV file")
	buildCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "4h", "Candle timeframe, recorded in artifacts")
	buildCmd.Flags().BoolVarP(&withLabels, "labels", "l", false, "Attach the future_ret training label")
	buildCmd.Flags().BoolVar(&dropWarmup, "drop-warmup", false, "Drop rows with undefined warm-up features")
	buildCmd.Flags().StringVar(&estimator, "vol-estimator", "rss",
		"Realized volatility estimator: rss, sample or population")
	buildCmd.Flags().StringVar(&artifactsDir, "artifacts", "", "Optional directory for features.json and meta.json")
	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("pair")
	_ = buildCmd.MarkFlagRequired("output")

	return buildCmd
}

func pipelineConfig() (feature.Config, error) {
	cfg := feature.DefaultConfig()
	cfg.IncludeLabels = withLabels
	if dropWarmup {
		cfg.Warmup = feature.WarmupDrop
	}

	switch estimator {
	case "", "rss":
		cfg.Estimator = feature.VolRootSumSquares
	case "sample":
		cfg.Estimator = feature.VolSampleStdDev
	case "population":
		cfg.Estimator = feature.VolPopulationStdDev
	default:
		return cfg, fmt.Errorf("unknown volatility estimator %q", estimator)
	}
	return cfg, nil
}

func runBuild(_ *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	fs, err := quantfeat.BuildFromCSV(input, pair, cfg)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer outputFile.Close()

	if err := dataset.WriteCSV(outputFile, fs); err != nil {
		return err
	}

	log.WithField("pair", pair).
		WithField("rows", fs.Len()).
		WithField("columns", len(fs.Names())).
		Info("feature table saved to: " + output)

	if artifactsDir != "" {
		meta := dataset.Meta{
			Pair:      pair,
			Timeframe: timeframe,
			Rows:      fs.Len(),
			Labeled:   fs.HasLabels(),
			BuiltAt:   time.Now().UTC(),
		}
		if err := dataset.ExportArtifacts(artifactsDir, fs.FeatureNames(), meta); err != nil {
			return err
		}
		log.Info("artifacts saved to: " + artifactsDir)
	}

	return nil
}

func buildInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print column statistics and the label distribution for a candle CSV file",
		RunE:  runInspect,
	}

	inspectCmd.Flags().StringVarP(&input, "input", "i", "", "Input candle CSV file")
	inspectCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	_ = inspectCmd.MarkFlagRequired("input")
	_ = inspectCmd.MarkFlagRequired("pair")

	return inspectCmd
}

func runInspect(_ *cobra.Command, _ []string) error {
	cfg := feature.DefaultConfig()
	cfg.IncludeLabels = true

	fs, err := quantfeat.BuildFromCSV(input, pair, cfg)
	if err != nil {
		return err
	}

	return quantfeat.PrintSummary(os.Stdout, fs)
}

package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/spread-scanner/src/cache"
	"github.com/jiaming2012/spread-scanner/src/ml"
	"github.com/jiaming2012/spread-scanner/src/models"
	"github.com/jiaming2012/spread-scanner/src/scanner"
	"github.com/jiaming2012/spread-scanner/src/services"
	"github.com/jiaming2012/spread-scanner/src/utils"
)

type RunArgs struct {
	Symbols    []string
	Strategies []string
	MaxResults int
	ConfigFile string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/scanner/main.go --symbols AAPL,MSFT --strategies leap_call",
	Short: "Scan option chains for ranked debit spread candidates",
	Run: func(cmd *cobra.Command, args []string) {
		symbols, err := cmd.Flags().GetStringSlice("symbols")
		if err != nil {
			log.Fatalf("error getting symbols: %v", err)
		}

		strategies, err := cmd.Flags().GetStringSlice("strategies")
		if err != nil {
			log.Fatalf("error getting strategies: %v", err)
		}

		maxResults, err := cmd.Flags().GetInt("maxResults")
		if err != nil {
			log.Fatalf("error getting maxResults: %v", err)
		}

		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		if err := Run(RunArgs{
			Symbols:    symbols,
			Strategies: strategies,
			MaxResults: maxResults,
			ConfigFile: configFile,
		}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func Run(args RunArgs) error {
	ctx := context.Background()

	projectDir := os.Getenv("PROJECT_DIR")
	if err := utils.InitEnvironmentVariables(projectDir); err != nil {
		log.Warnf("failed to load .env file: %v", err)
	}

	config := models.DefaultScannerConfig()
	if args.ConfigFile != "" {
		data, err := os.ReadFile(path.Join(projectDir, args.ConfigFile))
		if err != nil {
			return fmt.Errorf("Run: failed to read scanner config: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("Run: failed to unmarshal scanner config: %w", err)
		}

		config.ApplyDefaults()
	}

	scanService, err := buildScanner(ctx, config)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	filters := models.DefaultScanFilters()
	if len(args.Symbols) > 0 {
		filters.Symbols = args.Symbols
	}

	if len(args.Strategies) > 0 {
		filters.Strategies = make([]models.SpreadType, 0, len(args.Strategies))
		for _, strategy := range args.Strategies {
			filters.Strategies = append(filters.Strategies, models.SpreadType(strategy))
		}
	}

	if args.MaxResults > 0 {
		filters.MaxResults = args.MaxResults
	}

	result, err := scanService.Scan(ctx, filters)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	renderResult(result)

	return nil
}

func buildScanner(ctx context.Context, config models.ScannerConfigYAML) (*scanner.Scanner, error) {
	tradierURL, err := utils.GetEnv("TRADIER_BASE_URL")
	if err != nil {
		return nil, fmt.Errorf("buildScanner: %w", err)
	}

	tradierToken, err := utils.GetEnv("TRADIER_BEARER_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("buildScanner: %w", err)
	}

	fmpAPIKey, err := utils.GetEnv("FMP_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("buildScanner: %w", err)
	}

	tradier := services.NewTradierClient(tradierURL, tradierToken)

	var bars services.BarsProvider
	if polygonAPIKey := os.Getenv("POLYGON_API_KEY"); polygonAPIKey != "" {
		bars = services.NewPolygonBarsClient(polygonAPIKey)
	}

	marketData := services.NewMarketDataService(tradier, bars)
	fundamentals := services.NewFMPClient(os.Getenv("FMP_BASE_URL"), fmpAPIKey)
	news := services.NewNewsAggregator(config.MaxArticlesPerSymbol, services.NewYahooNewsClient(), services.NewEdgarClient())

	var classifier scanner.SentimentClassifier
	if sentimentURL := os.Getenv("SENTIMENT_API_URL"); sentimentURL != "" {
		classifier = services.NewSentimentAPIClient(sentimentURL)
	}

	ranker, err := ml.LoadRanker(config.ModelWeightsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("buildScanner: %w", err)
	}

	universe := scanner.NewUniverseResolver(config.UniverseCSV)

	return scanner.NewScanner(marketData, fundamentals, news, classifier, ranker, cache.NewMemoryCache(), universe, config), nil
}

func renderResult(result *models.ScanResult) {
	p := message.NewPrinter(language.English)

	fmt.Printf("Scan %s: %d candidates evaluated, %d returned\n\n", result.ScanID, result.TotalCandidatesEvaluated, len(result.Results))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Symbol", "Strategy", "Legs", "Debit", "Max Profit", "PoP", "IV Rank", "Quality", "Risk"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, row := range result.Results {
		legs := fmt.Sprintf("%.2f", row.Spread.LongLeg.Strike)
		if row.Spread.ShortLeg != nil {
			legs = fmt.Sprintf("%.2f/%.2f", row.Spread.LongLeg.Strike, row.Spread.ShortLeg.Strike)
		}

		table.Append([]string{
			fmt.Sprintf("%d", row.Rank),
			row.Spread.Underlying.String(),
			strings.ToUpper(string(row.Spread.SpreadType)),
			legs,
			p.Sprintf("$%.2f", row.Spread.NetDebit),
			p.Sprintf("$%.2f", row.Spread.MaxProfit),
			fmt.Sprintf("%.1f%%", row.Spread.ProbabilityOfProfit*100),
			fmt.Sprintf("%.0f", row.Spread.IVRank),
			fmt.Sprintf("%.1f", row.Prediction.SpreadQualityScore),
			fmt.Sprintf("%.1f", row.RiskScore.CompositeScore),
		})
	}

	table.Render()
}

func main() {
	runCmd.PersistentFlags().StringSlice("symbols", []string{}, "Symbols to scan. Defaults to the built-in universe.")
	runCmd.PersistentFlags().StringSlice("strategies", []string{}, "Spread strategies to construct.")
	runCmd.PersistentFlags().Int("maxResults", 0, "Maximum number of ranked spreads to return.")
	runCmd.PersistentFlags().String("config", "", "Path to the scanner config yaml, relative to PROJECT_DIR.")

	runCmd.Execute()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/spread-scanner/src/api"
	"github.com/jiaming2012/spread-scanner/src/cache"
	"github.com/jiaming2012/spread-scanner/src/ml"
	"github.com/jiaming2012/spread-scanner/src/models"
	"github.com/jiaming2012/spread-scanner/src/scanner"
	"github.com/jiaming2012/spread-scanner/src/services"
	"github.com/jiaming2012/spread-scanner/src/utils"
)

func loadConfig(projectDir string) models.ScannerConfigYAML {
	config := models.DefaultScannerConfig()

	configFile := os.Getenv("SCANNER_CONFIG_FILE")
	if configFile == "" {
		return config
	}

	data, err := os.ReadFile(path.Join(projectDir, configFile))
	if err != nil {
		log.Fatalf("failed to read scanner config: %v", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Fatalf("failed to unmarshal scanner config: %v", err)
	}

	config.ApplyDefaults()

	return config
}

func buildScanner(ctx context.Context, config models.ScannerConfigYAML) *scanner.Scanner {
	tradierURL, err := utils.GetEnv("TRADIER_BASE_URL")
	if err != nil {
		log.Fatalf("$TRADIER_BASE_URL not set: %v", err)
	}

	tradierToken, err := utils.GetEnv("TRADIER_BEARER_TOKEN")
	if err != nil {
		log.Fatalf("$TRADIER_BEARER_TOKEN not set: %v", err)
	}

	fmpAPIKey, err := utils.GetEnv("FMP_API_KEY")
	if err != nil {
		log.Fatalf("$FMP_API_KEY not set: %v", err)
	}

	tradier := services.NewTradierClient(tradierURL, tradierToken)

	var bars services.BarsProvider
	if polygonAPIKey := os.Getenv("POLYGON_API_KEY"); polygonAPIKey != "" {
		bars = services.NewPolygonBarsClient(polygonAPIKey)
	} else {
		log.Warn("$POLYGON_API_KEY not set, IV rank will use neutral defaults")
	}

	marketData := services.NewMarketDataService(tradier, bars)
	fundamentals := services.NewFMPClient(os.Getenv("FMP_BASE_URL"), fmpAPIKey)
	news := services.NewNewsAggregator(config.MaxArticlesPerSymbol, services.NewYahooNewsClient(), services.NewEdgarClient())

	var classifier scanner.SentimentClassifier
	if sentimentURL := os.Getenv("SENTIMENT_API_URL"); sentimentURL != "" {
		classifier = services.NewSentimentAPIClient(sentimentURL)
	} else {
		log.Warn("$SENTIMENT_API_URL not set, sentiment will score neutral")
	}

	ranker, err := ml.LoadRanker(config.ModelWeightsPath, nil)
	if err != nil {
		log.Fatalf("failed to load ranker weights: %v", err)
	}

	if ranker.IsPlaceholder() {
		log.Info("no model weights configured, ranker running in placeholder mode")
	}

	var scanCache cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			log.Warnf("failed to connect to redis, falling back to in-memory cache: %v", err)
			scanCache = cache.NewMemoryCache()
		} else {
			scanCache = redisCache
		}
	} else {
		scanCache = cache.NewMemoryCache()
	}

	universe := scanner.NewUniverseResolver(config.UniverseCSV)

	return scanner.NewScanner(marketData, fundamentals, news, classifier, ranker, scanCache, universe, config)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	projectDir := os.Getenv("PROJECT_DIR")
	if err := utils.InitEnvironmentVariables(projectDir); err != nil {
		log.Warnf("failed to load .env file: %v", err)
	}

	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))

	config := loadConfig(projectDir)
	scanService := buildScanner(ctx, config)

	port, err := utils.GetEnv("PORT")
	if err != nil {
		log.Fatalf("$PORT not set: %v", err)
	}

	router := mux.NewRouter()
	api.SetupHandler(router.PathPrefix("/scanner").Subrouter(), scanService)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Infof("listening on :%s", port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

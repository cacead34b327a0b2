package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/skillsmap/internal/cache"
	"github.com/muhammadolammi/skillsmap/internal/database"
	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/pipeline"
	usersession "github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/muhammadolammi/skillsmap/internal/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "skillsmap",
	Short: "Turn resumes into a stored, visualised skills profile",
	Long: `skillsmap extracts technical skills from PDF and Word resumes with a
language model, masks personal details before anything leaves the process, stores
skills and ASC competency ratings in Postgres and renders a radial skills map.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger.Init(loadConfig().loggerConfig(verbose))
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), loadConfig())
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume uploaded resumes from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker(cmd.Context(), loadConfig())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd, workerCmd, extractCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() AppConfig {
	workers, err := strconv.Atoi(os.Getenv("WORKERS"))
	if err != nil || workers < 1 {
		workers = 3
	}
	return AppConfig{
		DBURL:        os.Getenv("DB_URL"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", skills.DefaultModel),
		AdvisorModel: envOr("ADVISOR_MODEL", defaultAdvisorModel),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		Port:         envOr("PORT", "8080"),
		Workers:      workers,
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
		R2: R2Config{
			AccountID: os.Getenv("R2_ACCCOUNT_ID"),
			Bucket:    os.Getenv("R2_BUCKET"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
		},
	}
}

func (c AppConfig) loggerConfig(verbose bool) logger.Config {
	level := c.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.Config{Level: level, Format: c.LogFormat}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireEnv reports the first empty value by its variable name.
func requireEnv(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return errors.Errorf("empty %s in environment", pairs[i])
		}
	}
	return nil
}

func openStore(dbURL string) (*sql.DB, *database.Queries, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening db")
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, database.New(db), nil
}

// newProcessor builds the extraction pipeline. Redis is optional; without it
// every resume goes to the model.
func newProcessor(ctx context.Context, cfg AppConfig, st pipeline.SkillStore) *pipeline.Processor {
	opts := []skills.Option{skills.WithModelName(cfg.GeminiModel)}
	rc, err := cache.NewFromURL(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, extraction cache disabled")
	} else if rc != nil {
		opts = append(opts, skills.WithCache(rc))
	}

	completer := skills.NewGeminiCompleter(cfg.GeminiModel, cfg.GoogleAPIKey)
	return pipeline.NewProcessor(skills.NewExtractor(completer, opts...), st)
}

func runServe(ctx context.Context, cfg AppConfig) error {
	if err := requireEnv("DB_URL", cfg.DBURL); err != nil {
		return err
	}
	db, queries, err := openStore(cfg.DBURL)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.New(queries)
	processor := newProcessor(ctx, cfg, st)

	var advisor CareerAdvisor
	if cfg.GoogleAPIKey != "" {
		a, err := NewAdvisor(ctx, cfg.GoogleAPIKey, cfg.AdvisorModel)
		if err != nil {
			logger.Warn().Err(err).Msg("career advisor disabled")
		} else {
			advisor = a
		}
	} else {
		logger.Warn().Msg("empty GOOGLE_API_KEY, career advisor disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewServer(usersession.NewRegistry(), processor, st, advisor).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return Serve(ctx, srv)
}

func runWorker(ctx context.Context, cfg AppConfig) error {
	err := requireEnv(
		"DB_URL", cfg.DBURL,
		"RABBITMQ_URL", cfg.RabbitMQURL,
		"GOOGLE_API_KEY", cfg.GoogleAPIKey,
		"R2_ACCCOUNT_ID", cfg.R2.AccountID,
		"R2_BUCKET", cfg.R2.Bucket,
		"R2_ACCESS_KEY", cfg.R2.AccessKey,
		"R2_SECRET_KEY", cfg.R2.SecretKey,
	)
	if err != nil {
		return err
	}

	db, queries, err := openStore(cfg.DBURL)
	if err != nil {
		return err
	}
	defer db.Close()

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return errors.Wrap(err, "error creating aws config")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return errors.Wrap(err, "error connecting to RabbitMQ")
	}
	defer conn.Close()

	workerConfig := WorkerConfig{
		DB:          queries,
		Processor:   newProcessor(ctx, cfg, store.New(queries)),
		Objects:     NewR2Fetcher(awsConfig, cfg.R2),
		Publisher:   &amqpPublisher{conn: conn},
		RABBITMQUrl: cfg.RabbitMQURL,
	}

	logger.Info().Int("workers", cfg.Workers).Msg("starting consumer pool")
	return workerConfig.StartConsumerWorkerPool(ctx, cfg.Workers)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/blocksphere4/TalentHireAI/internal/api"
	"github.com/blocksphere4/TalentHireAI/internal/ats"
	"github.com/blocksphere4/TalentHireAI/internal/config"
	"github.com/blocksphere4/TalentHireAI/internal/database"
	"github.com/blocksphere4/TalentHireAI/internal/extract"
	"github.com/blocksphere4/TalentHireAI/internal/interview"
	"github.com/blocksphere4/TalentHireAI/internal/lifecycle"
	applogger "github.com/blocksphere4/TalentHireAI/internal/logger"
	"github.com/blocksphere4/TalentHireAI/internal/notify"
	"github.com/blocksphere4/TalentHireAI/internal/queue"
	"github.com/blocksphere4/TalentHireAI/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := applogger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		logger.Fatal("error opening db", zap.Error(err))
	}
	defer db.Close()
	queries := database.New(db)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		logger.Fatal("error creating aws config", zap.Error(err))
	}
	uploader := storage.NewClient(awsCfg, storage.R2Config{
		AccountID: cfg.R2AccountID,
		Bucket:    cfg.R2Bucket,
		BaseURL:   cfg.R2BaseURL,
	})

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("error connecting to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()
	publisher := queue.NewPublisher(conn, logger)

	var generator *ats.Generator
	if cfg.GoogleAPIKey != "" {
		if generator, err = ats.NewGenerator(ctx, cfg.GoogleAPIKey, cfg.GeminiModel); err != nil {
			logger.Fatal("error creating gemini client", zap.Error(err))
		}
	}

	var scorer ats.Scorer = ats.NewEngine()
	if cfg.UseGemini {
		scorer = ats.NewGeminiScorer(generator, logger)
		logger.Info("using generative scorer", zap.String("model", cfg.GeminiModel))
	}

	notifier := notify.NewDispatcher(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromAddr,
	}, logger)

	var questionGen interview.QuestionGenerator
	if generator != nil {
		questionGen = generator
	}
	interviews := interview.NewProvisioner(queries, questionGen, cfg.BaseURL, logger)

	controller := lifecycle.NewController(lifecycle.Options{
		Jobs:        queries,
		Apps:        queries,
		Uploader:    uploader,
		Extract:     extract.BestEffort,
		Scorer:      scorer,
		Notifier:    notifier,
		Interviews:  interviews,
		Queue:       publisher,
		CompanyName: cfg.CompanyName,
		Logger:      logger,
	})

	consumer := queue.NewConsumer(cfg.RabbitMQURL, publisher, controller, logger)
	go consumer.StartWorkerPool(ctx, cfg.Workers)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(controller, queries, uploader, logger).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.Int("workers", cfg.Workers))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

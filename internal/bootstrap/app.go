package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"audio-vectorize/internal/ai"
	appsvc "audio-vectorize/internal/app"
	"audio-vectorize/internal/cache"
	"audio-vectorize/internal/config"
	"audio-vectorize/internal/media"
	mysqlClient "audio-vectorize/internal/platform/mysql"
	postgresClient "audio-vectorize/internal/platform/postgres"
	rabbitmqClient "audio-vectorize/internal/platform/rabbitmq"
	redisClient "audio-vectorize/internal/platform/redis"
	sqliteClient "audio-vectorize/internal/platform/sqlite"
	"audio-vectorize/internal/repository"
	"audio-vectorize/internal/transcribe"
	"audio-vectorize/internal/vectorstore"
	"audio-vectorize/internal/vectorstore/memory"
	mongostore "audio-vectorize/internal/vectorstore/mongo"
	pgvectorstore "audio-vectorize/internal/vectorstore/pgvector"
	"audio-vectorize/internal/worker"
)

// App holds every process-wide dependency. It is built once at startup and
// handed to the router.
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	VectorStore   vectorstore.Store
	Redis         *redis.Client
	MQConn        *amqp.Connection
	CleanupWorker *worker.CleanupWorker

	Catalog *appsvc.CatalogService
	Audio   *appsvc.AudioService

	StartedAt time.Time

	closeVector func(context.Context) error
	vectorDB    *gorm.DB
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := openRelational(ctx, cfg.Database)
	if err != nil {
		return err
	}
	a.DB = db
	if err := repository.Migrate(db); err != nil {
		return err
	}

	if err := a.openVectorStore(ctx); err != nil {
		return err
	}

	llm := ai.NewOpenAICompatibleClient(time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second)
	embedder := ai.NewEmbedder(llm, ai.EmbeddingConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		BatchSize: cfg.Embedding.BatchSize,
	})
	recognizer, err := newRecognizer(ctx, cfg.Speech, llm)
	if err != nil {
		return err
	}
	transcriber := transcribe.NewTranscriber(
		media.NewFFmpeg(cfg.Speech.FFmpegPath, cfg.Speech.SampleRate),
		recognizer,
		transcribe.SilenceConfig{
			MinSilenceMs:    cfg.Silence.MinSilenceMs,
			KeepSilenceMs:   cfg.Silence.KeepSilenceMs,
			ThresholdOffset: cfg.Silence.ThresholdOffsetDB,
			SeekStepMs:      cfg.Silence.SeekStepMs,
		},
	)

	databases := repository.NewDatabaseRepository(db)
	collections := repository.NewCollectionRepository(db)
	files := repository.NewFileRepository(db)
	indexer := vectorstore.NewIndexer(a.VectorStore, embedder)

	var listingCache appsvc.ListingCache
	if cfg.Redis.Enabled {
		a.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		listingCache = cache.NewCatalogCache(a.Redis, time.Duration(cfg.Redis.ListingTTLSeconds)*time.Second)
	}

	var scheduler appsvc.CleanupScheduler
	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		scheduler = rabbitmqClient.NewJobPublisher(a.MQConn, cfg.RabbitMQ.CleanupQueue)
		a.CleanupWorker = worker.NewCleanupWorker(a.MQConn, indexer, files, cfg.RabbitMQ.CleanupQueue)
		if err := a.CleanupWorker.Start(ctx); err != nil {
			return fmt.Errorf("start cleanup worker failed: %w", err)
		}
	}

	a.Catalog = appsvc.NewCatalogService(databases, collections, a.VectorStore, listingCache)
	a.Audio = appsvc.NewAudioService(databases, collections, files, transcriber, indexer, scheduler)
	return nil
}

func openRelational(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "mysql":
		return mysqlClient.New(ctx, cfg.DSN, cfg.LogLevel)
	case "sqlite":
		return sqliteClient.New(ctx, cfg.DSN, cfg.LogLevel)
	default:
		return postgresClient.New(ctx, cfg.DSN, cfg.LogLevel)
	}
}

func (a *App) openVectorStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Vector.Backend {
	case "mongo":
		store, err := mongostore.New(ctx, mongostore.Config{
			URI:                 cfg.Vector.MongoURI,
			IndexName:           cfg.Vector.IndexName,
			NumCandidatesFactor: cfg.Vector.NumCandidatesFactor,
		})
		if err != nil {
			return err
		}
		a.VectorStore, a.closeVector = store, store.Close
	case "pgvector":
		db := a.DB
		if cfg.Vector.PgvectorDSN != "" {
			vdb, err := postgresClient.New(ctx, cfg.Vector.PgvectorDSN, cfg.Database.LogLevel)
			if err != nil {
				return err
			}
			a.vectorDB, db = vdb, vdb
		} else if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("pgvector backend needs pgvector_dsn when the database driver is %s", cfg.Database.Driver)
		}
		store, err := pgvectorstore.New(db)
		if err != nil {
			return err
		}
		a.VectorStore = store
	default:
		log.Printf("using in-memory vector store; chunks are lost on restart")
		a.VectorStore = memory.NewStore()
	}
	return nil
}

func newRecognizer(ctx context.Context, cfg config.SpeechConfig, llm *ai.OpenAICompatibleClient) (transcribe.Recognizer, error) {
	if cfg.Engine == "openai" {
		return transcribe.NewOpenAIRecognizer(llm, ai.TranscriptionConfig{
			BaseURL:  cfg.OpenAIBaseURL,
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.OpenAIModel,
			Language: languageOnly(cfg.LanguageCode),
		}), nil
	}
	google, err := transcribe.NewGoogleRecognizer(ctx, transcribe.GoogleConfig{
		APIKey:          cfg.GoogleAPIKey,
		CredentialsFile: cfg.GoogleCredentialsFile,
		LanguageCode:    cfg.LanguageCode,
	})
	if err != nil {
		return nil, fmt.Errorf("create google speech client failed: %w", err)
	}
	return google, nil
}

// languageOnly turns "en-US" into the ISO-639-1 "en" whisper expects.
func languageOnly(code string) string {
	for i, r := range code {
		if r == '-' || r == '_' {
			return code[:i]
		}
	}
	return code
}

func closeGorm(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *App) Close() error {
	var closeErr error
	if a.CleanupWorker != nil {
		a.CleanupWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.closeVector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.closeVector(ctx); err != nil {
			closeErr = err
		}
		cancel()
	}
	if err := closeGorm(a.vectorDB); err != nil {
		closeErr = err
	}
	if err := closeGorm(a.DB); err != nil {
		closeErr = err
	}
	return closeErr
}

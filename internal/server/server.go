package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/zhiwen/backend/internal/server/middleware"
	"github.com/zhiwen/backend/internal/service"
	"github.com/zhiwen/backend/internal/util"
	"github.com/zhiwen/backend/pkg/ai"
	oai "github.com/zhiwen/backend/pkg/ai/ollama"
	gai "github.com/zhiwen/backend/pkg/ai/openai"
	"github.com/zhiwen/backend/pkg/loader"
	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/textproc"
	gseg "github.com/zhiwen/backend/pkg/tokenizer/gse"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docLoader, err := loader.NewDocumentLoader(loader.NewDocumentLoaderParams{
		DocumentsDir: util.GetEnvString("DOCUMENTS_DIR", "documents"),
	})
	if err != nil {
		logger.Fatal("Failed to open documents directory", "err", err)
	}

	customWords, err := service.LoadCustomWords(util.GetEnvString("CUSTOM_WORDS_FILE", "custom_words.txt"))
	if err != nil {
		logger.Fatal("Failed to load custom words", "err", err)
	}

	segmenter, err := gseg.NewTokenizer(gseg.NewTokenizerParams{CustomWords: customWords})
	if err != nil {
		logger.Fatal("Failed to initialize segmenter", "err", err)
	}

	svc, err := service.NewService(service.NewServiceParams{
		Loader:      docLoader,
		Segmenter:   segmenter,
		AiClient:    newAiClient(),
		CustomWords: customWords,
		Config: service.Config{
			ChunkSize:    int(util.GetEnvNumeric("CHUNK_SIZE", textproc.DefaultChunkSize)),
			ChunkOverlap: int(util.GetEnvNumeric("CHUNK_OVERLAP", textproc.DefaultChunkOverlap)),
			TopK:         int(util.GetEnvNumeric("RETRIEVE_TOP_K", 10)),
			RerankTopK:   int(util.GetEnvNumeric("RERANK_TOP_K", 6)),
			Temperature:  util.GetEnvNumeric("GENERATE_TEMPERATURE", 0),
			CachePath:    util.GetEnvString("QUERY_CACHE_PATH", ".rag_cache/query_cache.json"),
		},
	})
	if err != nil {
		logger.Fatal("Failed to initialize service", "err", err)
	}

	if _, err := svc.ReloadDocuments(ctx); err != nil {
		logger.Fatal("Failed to load documents", "err", err)
	}

	e.Use(mid.AppContextMiddleware(svc))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func newAiClient() ai.Client {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
	}
}

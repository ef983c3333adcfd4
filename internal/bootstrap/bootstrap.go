package bootstrap

import (
	"github.com/inklyn/docchat/internal/config"
	"github.com/inklyn/docchat/internal/core/budget"
	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/core/usecase"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/imagefile"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/pdffile"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/slides"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/tabular"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/textfile"
	"github.com/inklyn/docchat/internal/infrastructure/extractor/wordproc"
	"github.com/inklyn/docchat/internal/infrastructure/llm/openrouter"
	"github.com/inklyn/docchat/internal/infrastructure/ocr"
	"github.com/inklyn/docchat/internal/infrastructure/resilience"
	"github.com/inklyn/docchat/internal/infrastructure/session"
	"github.com/inklyn/docchat/internal/infrastructure/sniffer"
	"github.com/inklyn/docchat/internal/infrastructure/tokenizer"
	"github.com/inklyn/docchat/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Pipeline    *metrics.PipelineMetrics
	HTTPMetrics *metrics.HTTPMetrics

	SessionUC  *usecase.SessionUseCase
	IngestUC   *usecase.IngestUseCase
	ConverseUC *usecase.ConverseUseCase
	EmailUC    *usecase.EmailUseCase
}

func New(cfg config.Config) *App {
	pipeline := metrics.NewPipelineMetrics("api")
	httpMetrics := metrics.NewHTTPMetrics(pipeline, "api")

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	recognizer := ocr.NewVisionClient(cfg.OCRBaseURL, cfg.OCRModel, cfg.OCRMinTextLength, exec, pipeline)

	textExtractor := textfile.New()
	wordExtractor := wordproc.New()

	extractors := map[domain.LogicalType]ports.Extractor{
		domain.TypePDF:            pdffile.New(recognizer, cfg.PDFMinTextDensity, cfg.ExtractionWorkers),
		domain.TypeLegacyDoc:      wordExtractor,
		domain.TypeModernDoc:      wordExtractor,
		domain.TypeDelimitedTable: tabular.NewCSV(),
		domain.TypeSpreadsheet:    tabular.NewSpreadsheet(),
		domain.TypeSlideDeck:      slides.New(),
		domain.TypeStructuredText: textExtractor,
		domain.TypePlainText:      textExtractor,
		domain.TypeImage:          imagefile.New(recognizer),
	}

	store := session.NewStore(cfg.SessionIdleTTL)
	sizer := tokenizer.New()
	budgeter := budget.New(sizer, budget.Config{
		DefaultBudget:   cfg.PromptBudget,
		DocumentShare:   cfg.DocumentShare,
		MessageOverhead: cfg.MessageOverhead,
	})

	chatModel := openrouter.New(openrouter.Config{
		BaseURL:     cfg.ChatBaseURL,
		APIKey:      cfg.ChatAPIKey,
		AppName:     cfg.ChatAppName,
		Referer:     cfg.ChatReferer,
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: float32(cfg.ChatTemperature),
	}, exec)

	return &App{
		Config:      cfg,
		Pipeline:    pipeline,
		HTTPMetrics: httpMetrics,
		SessionUC:   usecase.NewSessionUseCase(store),
		IngestUC:    usecase.NewIngestUseCase(sniffer.New(), extractors, textExtractor, store, cfg.IngestTimeout),
		ConverseUC:  usecase.NewConverseUseCase(store, budgeter, chatModel, cfg.SystemInstructions, cfg.DefaultModel, cfg.ModelCatalog),
		EmailUC:     usecase.NewEmailUseCase(store, budgeter, chatModel, cfg.DefaultModel, cfg.ModelCatalog),
	}
}

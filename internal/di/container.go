package di

import (
	"context"
	"fmt"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/application/service"
	"desktop-agent/internal/infrastructure/browser/rod"
	"desktop-agent/internal/infrastructure/llm/gemini"
	"desktop-agent/internal/infrastructure/llm/openrouter"
	"desktop-agent/internal/infrastructure/logger"
	"desktop-agent/internal/infrastructure/ocr/tesseract"
	"desktop-agent/internal/infrastructure/policy"
	"desktop-agent/internal/infrastructure/prompts"
	"desktop-agent/internal/infrastructure/screen"
	"desktop-agent/internal/infrastructure/system"
	"desktop-agent/internal/infrastructure/userinteraction"
	"desktop-agent/internal/usecase/agent"
	"desktop-agent/internal/usecase/executor"
	"desktop-agent/internal/usecase/oracle"
	"desktop-agent/internal/usecase/parser"
	"desktop-agent/internal/usecase/planner"
	"desktop-agent/internal/usecase/resolver"
	"desktop-agent/internal/usecase/session"
)

type Container struct {
	Logger     output.LoggerPort
	Browser    *rod.BrowserAdapter
	LLM        output.LLMPort
	Policy     *policy.Policy
	Registry   output.ActionRegistry
	Parser     *parser.Parser
	Dispatcher *executor.Dispatcher
	Planner    *planner.UseCase
	Agent      *agent.UseCase
	Session    *session.UseCase
}

type Config struct {
	OracleProvider    string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	GeminiAPIKey      string
	GeminiModel       string
	OracleTemperature float64
	OracleMaxTokens   int
	OracleRPM         int
	AgentMaxSteps     int

	BrowserHeadless bool
	BrowserTimeout  time.Duration
	StartURL        string
	TaskbarHeight   int

	OCREngine     string
	TesseractPath string
	TesseractLang string

	PolicyFile    string
	WatchPolicy   bool
	ScreenshotDir string

	Log logger.Config
}

// ConfigFromEnv reads every setting from cfg, applying the documented
// defaults.
func ConfigFromEnv(cfg output.ConfigPort) Config {
	return Config{
		OracleProvider:    cfg.GetWithDefault("ORACLE_PROVIDER", "openrouter"),
		OpenRouterAPIKey:  cfg.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:   cfg.Get("OPENROUTER_MODEL_NAME"),
		GeminiAPIKey:      cfg.Get("GEMINI_API_KEY"),
		GeminiModel:       cfg.Get("GEMINI_MODEL_NAME"),
		OracleTemperature: cfg.GetFloat("ORACLE_TEMPERATURE", 0.3),
		OracleMaxTokens:   cfg.GetInt("ORACLE_MAX_TOKENS", 800),
		OracleRPM:         cfg.GetInt("ORACLE_REQUESTS_PER_MINUTE", 0),
		AgentMaxSteps:     cfg.GetInt("AGENT_MAX_STEPS", agent.DefaultMaxSteps),
		BrowserHeadless:   cfg.GetBool("BROWSER_HEADLESS", false),
		BrowserTimeout:    cfg.GetDuration("BROWSER_TIMEOUT", 10*time.Second),
		StartURL:          cfg.GetWithDefault("START_URL", "about:blank"),
		TaskbarHeight:     cfg.GetInt("TASKBAR_HEIGHT", 48),
		OCREngine:         cfg.GetWithDefault("OCR_ENGINE", "dom"),
		TesseractPath:     cfg.GetWithDefault("TESSERACT_PATH", "tesseract"),
		TesseractLang:     cfg.GetWithDefault("TESSERACT_LANG", "eng"),
		PolicyFile:        cfg.GetWithDefault("POLICY_FILE", "policy.yaml"),
		WatchPolicy:       cfg.GetBool("POLICY_WATCH", true),
		ScreenshotDir:     cfg.GetWithDefault("SCREENSHOT_DIR", "."),
		Log: logger.Config{
			Level:      cfg.GetWithDefault("LOG_LEVEL", "info"),
			Dir:        cfg.GetWithDefault("LOG_DIR", "logs"),
			Console:    cfg.GetBool("LOG_CONSOLE", false),
			MaxSizeMB:  cfg.GetInt("LOG_MAX_SIZE_MB", 0),
			MaxBackups: cfg.GetInt("LOG_MAX_BACKUPS", 0),
			MaxAgeDays: cfg.GetInt("LOG_MAX_AGE_DAYS", 0),
		},
	}
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c := &Container{Logger: log}

	llm, err := newLLM(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.LLM = llm

	console := userinteraction.NewConsole()

	c.Policy, err = policy.Load(cfg.PolicyFile, console, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	if cfg.WatchPolicy && cfg.PolicyFile != "" {
		if err := c.Policy.Watch(ctx); err != nil {
			log.Warn("Policy hot reload disabled", "error", err)
		}
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browserCfg.Timeout = cfg.BrowserTimeout
	browserCfg.StartURL = cfg.StartURL
	browserCfg.Logger = log
	c.Browser, err = rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	masked := screen.NewMaskedScreen(c.Browser, cfg.TaskbarHeight, log)
	ocr := newOCR(cfg, c.Browser, log)
	targets := resolver.New(ocr, resolver.DefaultConfig(), log)
	platform := system.New(system.Config{Logger: log})

	registry := service.NewActionRegistry()
	actions := executor.NewActions(executor.Ports{
		Screen:   masked,
		Input:    c.Browser,
		System:   platform,
		Files:    platform,
		Web:      c.Browser,
		Resolver: targets,
	}, log, executor.WithScreenshotDir(cfg.ScreenshotDir))
	actions.Register(registry)
	c.Registry = registry

	c.Parser = parser.New(log)
	c.Dispatcher = executor.NewDispatcher(registry, c.Policy, log, executor.WithProgress(console))

	oracleCfg := oracle.DefaultConfig()
	oracleCfg.Temperature = float32(cfg.OracleTemperature)
	oracleCfg.MaxTokens = cfg.OracleMaxTokens
	oracleCfg.RequestsPerMinute = cfg.OracleRPM
	client := oracle.NewClient(llm, oracleCfg, log)

	c.Planner = planner.New(client, masked, registry, log, prompts.PlannerPrompt)
	c.Agent = agent.New(client, c.Dispatcher, masked, registry, log, console, prompts.AgentStepPrompt, cfg.AgentMaxSteps)
	c.Session = session.New(c.Parser, c.Dispatcher, c.Planner, c.Agent, service.NewScreenLock(), console, log)

	log.Info("Container ready",
		"oracle", cfg.OracleProvider,
		"ocr", cfg.OCREngine,
		"actions", len(registry.All()),
	)
	return c, nil
}

func newLLM(ctx context.Context, cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.OracleProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		gcfg := gemini.DefaultConfig(cfg.GeminiAPIKey, cfg.GeminiModel)
		gcfg.Logger = log
		llm, err := gemini.NewGeminiAdapter(ctx, gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return llm, nil
	case "openrouter", "":
		if cfg.OpenRouterAPIKey == "" || cfg.OpenRouterModel == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY and OPENROUTER_MODEL_NAME are required for the openrouter provider")
		}
		ocfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		ocfg.Logger = log
		return openrouter.NewOpenRouterAdapter(ocfg), nil
	}
	return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
}

// newOCR returns a lazily started engine. "dom" reads text boxes straight
// from the page; "tesseract" runs the binary on each capture.
func newOCR(cfg Config, dom output.OCRPort, log output.LoggerPort) *resolver.OCREngine {
	if cfg.OCREngine == "tesseract" {
		return resolver.NewOCREngine("tesseract", func() (output.OCRPort, error) {
			return tesseract.New(context.Background(), tesseract.Config{
				Path:     cfg.TesseractPath,
				Language: cfg.TesseractLang,
			})
		})
	}
	if cfg.OCREngine != "dom" {
		log.Warn("Unknown OCR engine, using dom", "engine", cfg.OCREngine)
	}
	return resolver.NewOCREngine("dom", func() (output.OCRPort, error) {
		return dom, nil
	})
}

func (c *Container) Close() {
	if c.Policy != nil {
		if err := c.Policy.Close(); err != nil {
			c.Logger.Warn("Policy watcher close failed", "error", err)
		}
	}
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fmuoria/interview-invite-agent/internal/composer"
	"github.com/fmuoria/interview-invite-agent/internal/config"
	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/llm"
	"github.com/fmuoria/interview-invite-agent/internal/logging"
	"github.com/fmuoria/interview-invite-agent/internal/mailer"
	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

// components is everything a surface needs to run the wizard
type components struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger
	wizard     *wizard.Controller
	generator  llm.Generator
}

// Close releases the generation client
func (c *components) Close() error {
	return llm.Close(c.generator)
}

// loadConfig reads the config file, then lets the dotenv file and the process environment
// override it. Real environment variables win over the dotenv file.
func loadConfig(path, dotenv string, lookup config.Lookup) (*config.Config, string, error) {
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", err
	}

	values, err := config.LoadEnvFile(dotenv)
	if err != nil {
		return nil, "", err
	}
	cfg.ApplyEnv(config.Chain(lookup, config.MapLookup(values)))

	return cfg, path, nil
}

// setup loads configuration and wires the wizard. When strict is false a generator that
// cannot be built is replaced by one that reports the problem on every compose, so the
// desktop app can still open and its settings be fixed.
func setup(ctx context.Context, stderr io.Writer, strict bool) (*components, error) {
	cfg, path, err := loadConfig(configPath, envFile, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		if strict {
			return nil, err
		}
		log.Warn("configuration incomplete, fix it in the Settings tab", slog.String("error", err.Error()))
	}

	dir, dirErr := directory.Load(cfg.CandidatesFile, log)
	if dirErr != nil {
		log.Error("failed to load candidates", slog.String("path", cfg.CandidatesFile), slog.String("error", dirErr.Error()))
		dir = directory.New()
	}

	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		if strict {
			return nil, err
		}
		log.Error("text generation unavailable", slog.String("error", err.Error()))
		genErr := err
		gen = llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
			return "", genErr
		})
	}

	dispatcher, err := mailer.NewFromConfig(cfg.Mail, log)
	if err != nil {
		llm.Close(gen)
		return nil, fmt.Errorf("failed to set up mail transport: %w", err)
	}

	comp := composer.New(gen,
		composer.Organization{Name: cfg.Organization.Name, Address: cfg.Organization.Address},
		composer.WithMaxTokens(cfg.LLM.MaxTokens),
		composer.WithTimeout(cfg.LLM.Timeout()),
		composer.WithLogger(log),
	)

	ctrl := wizard.NewController(dir, cfg.Interviewers, comp, dispatcher,
		wizard.WithLogger(log),
		wizard.WithDirectoryError(dirErr),
	)

	log.Info("wizard ready",
		slog.Int("candidates", dir.Len()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("transport", cfg.Mail.Transport))

	return &components{
		cfg:        cfg,
		configPath: path,
		log:        log,
		wizard:     ctrl,
		generator:  gen,
	}, nil
}

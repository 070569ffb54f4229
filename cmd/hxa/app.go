package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/config"
	"github.com/user/hydrolix-assistant/internal/hydrolix"
	"github.com/user/hydrolix-assistant/internal/memory"
	"github.com/user/hydrolix-assistant/internal/orchestrator"
	"github.com/user/hydrolix-assistant/internal/prompt"
	"github.com/user/hydrolix-assistant/internal/state"
	"github.com/user/hydrolix-assistant/internal/subagent"
	"github.com/user/hydrolix-assistant/internal/tools"
	"github.com/user/hydrolix-assistant/pkg/llm"
	"github.com/user/hydrolix-assistant/pkg/llm/bedrock"
	"github.com/user/hydrolix-assistant/pkg/llm/openai"
)

// app wires the assistant's components from config: the Hydrolix querier,
// the LLM provider, the analyst subagents, and the stores.
type app struct {
	cfg      *config.Config
	querier  hydrolix.Querier
	provider llm.Provider
	engine   *prompt.Engine
	memory   *memory.FileStore
	audits   auditstore.Store
	sessions *state.SessionStore
	orch     *orchestrator.Orchestrator
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	querier, err := buildQuerier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := prompt.New(cfg.LLM.Model, cfg.LLM.MaxContextTokens, cfg.LLM.OutputReserve, cfg.Timezone, cfg.Hydrolix.Table)
	if err != nil {
		return nil, fmt.Errorf("create prompt engine: %w", err)
	}

	audits, err := buildAuditStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	memStore := memory.NewFileStore(filepath.Join(cfg.DataDir, "memory"))

	saOpts := subagent.Options{
		Provider:  provider,
		Engine:    engine,
		Querier:   querier,
		MaxRounds: cfg.MaxToolRounds,
	}
	registry := orchestrator.NewRegistry()
	registry.Register(subagent.NewHydrolix(saOpts))
	registry.Register(subagent.NewQoE(saOpts))
	registry.Register(subagent.NewCacheOrigin(saOpts))
	registry.Register(tools.NewReadURL())

	orch := orchestrator.New(orchestrator.Options{
		Provider:  provider,
		Engine:    engine,
		Registry:  registry,
		Memory:    memStore,
		Audits:    audits,
		Timezone:  cfg.Timezone,
		LastK:     cfg.Memory.LastKTurns,
		MaxRounds: cfg.MaxToolRounds,
	})

	return &app{
		cfg:      cfg,
		querier:  querier,
		provider: provider,
		engine:   engine,
		memory:   memStore,
		audits:   audits,
		sessions: state.NewSessionStore(cfg.DataDir),
		orch:     orch,
	}, nil
}

// buildQuerier creates the Hydrolix client, fetching cluster credentials
// from Secrets Manager when a secret ARN is configured.
func buildQuerier(ctx context.Context, cfg *config.Config) (hydrolix.Querier, error) {
	hcfg := hydrolix.Config{
		Host:     cfg.Hydrolix.Host,
		Port:     cfg.Hydrolix.Port,
		User:     cfg.Hydrolix.User,
		Password: cfg.Hydrolix.Password,
	}
	if cfg.Hydrolix.SecretARN != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Audit.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		hcfg, err = hydrolix.ConfigFromSecret(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.Hydrolix.SecretARN)
		if err != nil {
			return nil, fmt.Errorf("load hydrolix credentials: %w", err)
		}
	}
	return hydrolix.New(hcfg), nil
}

func buildProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return openai.New(&llm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}), nil

	case "bedrock", "":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.LLM.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return bedrock.New(bedrockruntime.NewFromConfig(awsCfg), &llm.Config{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Region:      cfg.LLM.Region,
		}), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// buildAuditStore returns the DynamoDB-backed store when a table is
// configured, and the in-memory store otherwise (local runs keep their
// audit trail for the life of the process).
func buildAuditStore(ctx context.Context, cfg *config.Config) (auditstore.Store, error) {
	if cfg.Audit.Table == "" {
		return auditstore.NewMemoryStore(), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Audit.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return auditstore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Audit.Table), nil
}

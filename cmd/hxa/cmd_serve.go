package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/hydrolix-assistant/internal/delivery"
	"github.com/user/hydrolix-assistant/internal/gateway"
	"github.com/user/hydrolix-assistant/internal/httpapi"
	"github.com/user/hydrolix-assistant/internal/scheduler"
	"github.com/user/hydrolix-assistant/internal/state"
	"github.com/user/hydrolix-assistant/internal/telegram"
	"github.com/user/hydrolix-assistant/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant daemon (HTTP API, Telegram, scheduler)",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "hxa.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Gateway
	gw := gateway.New(a.sessions, int64(cfg.MaxConcurrent))
	gw.Queue.SetProcessor(func(run *gateway.Run) error {
		ev := *run.Event
		ev.TurnID = run.TurnID
		ans, err := a.orch.HandleTurn(run.Ctx, ev)
		if err != nil {
			return err
		}
		if run.OnComplete != nil {
			run.OnComplete(ans)
		}
		return nil
	})

	gw.Start(ctx)
	defer gw.Stop()

	slog.Info("hxa started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"max_tool_rounds", cfg.MaxToolRounds,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"hydrolix_table", cfg.Hydrolix.Table,
		"pid_file", pidPath,
	)

	// processTurn synchronously runs one event through the gateway and
	// returns the answer.
	processTurn := func(ctx context.Context, ev types.InboundEvent) (*types.Answer, error) {
		done := make(chan *types.Answer, 1)
		if err := gw.HandleInbound(ctx, &ev, gateway.WithOnComplete(func(ans *types.Answer) {
			done <- ans
		})); err != nil {
			return nil, err
		}
		select {
		case ans := <-done:
			return ans, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, gw, a.sessions, a.memory)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		deliveryReg.Register("telegram:", adapter.Deliver)
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Scheduler for report tasks
	taskStore := state.NewTaskStore(filepath.Join(cfg.DataDir, "tasks.json"))
	sched := scheduler.New(taskStore, func(task *state.Task) {
		ans, err := processTurn(ctx, types.InboundEvent{
			Source:     "scheduler",
			SessionKey: types.SessionKey(task.SessionKey),
			UserID:     "system",
			Text:       task.Prompt,
			Timezone:   task.Timezone,
		})
		if err != nil {
			slog.Error("scheduled report failed", "task", task.Name, "error", err)
			return
		}
		if ans.Text == "" {
			return
		}
		if err := deliveryReg.Deliver(task.SessionKey, ans); err != nil {
			slog.Error("report delivery failed", "task", task.Name, "error", err)
		}
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started")

	// HTTP API
	if cfg.HTTP.Enabled {
		apiSrv := httpapi.NewServer(processTurn, a.audits)
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: apiSrv,
		}
		go func() {
			slog.Info("http api started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http api error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/user"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/user/hydrolix-assistant/internal/tui"
	"github.com/user/hydrolix-assistant/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "session name (default: a fresh session per run)")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	sessionName, _ := cmd.Flags().GetString("session")
	if sessionName == "" {
		sessionName = string(types.NewSessionID())
	}
	sessionKey := types.NewSessionKey("tui", sessionName)
	userID := localUserID()

	submit := func(promptText string) (*types.Answer, error) {
		return a.orch.HandleTurn(ctx, types.InboundEvent{
			Source:     "tui",
			SessionKey: sessionKey,
			UserID:     userID,
			Text:       promptText,
			Timezone:   cfg.Timezone,
			LastK:      cfg.Memory.LastKTurns,
		})
	}

	program := tea.NewProgram(tui.New(submit), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat ui: %w", err)
	}
	return nil
}

func localUserID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}

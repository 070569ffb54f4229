package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/user/hydrolix-assistant/internal/results"
	"github.com/user/hydrolix-assistant/internal/types"
)

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("session", "ask", "session name to run the prompt in")
	askCmd.Flags().Bool("queries", false, "also print the queries each agent ran")
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	sessionName, _ := cmd.Flags().GetString("session")
	promptText := strings.Join(args, " ")

	ans, err := a.orch.HandleTurn(ctx, types.InboundEvent{
		Source:     "cli",
		SessionKey: types.NewSessionKey("cli", sessionName),
		UserID:     localUserID(),
		Text:       promptText,
		Timezone:   cfg.Timezone,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	printAnswer(ans)

	showQueries, _ := cmd.Flags().GetBool("queries")
	if showQueries {
		for _, group := range results.Group(ans.QueryResults) {
			fmt.Fprintf(os.Stdout, "\n[%s]", group.AgentName)
			if p := group.Prompt(); p != "" {
				fmt.Fprintf(os.Stdout, " %s", p)
			}
			fmt.Fprintln(os.Stdout)
			for _, q := range group.Queries {
				fmt.Fprintf(os.Stdout, "  %s\n", q.Query)
			}
		}
	}
	return nil
}

func printAnswer(ans *types.Answer) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, rerr := renderer.Render(ans.Text); rerr == nil {
			fmt.Fprint(os.Stdout, out)
			return
		}
	}
	fmt.Fprintln(os.Stdout, ans.Text)
}

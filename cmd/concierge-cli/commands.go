package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"concierge/internal/ai"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/concierge"
)

var intentCmd = &cobra.Command{
	Use:   "intent <message...>",
	Short: "Extract the structured gift intent from a single message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		got, err := a.Intents.Extract(cmd.Context(), []ai.Message{
			{Role: ai.RoleUser, Content: strings.Join(args, " ")},
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), got)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Query the product catalog (at most three keywords)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), a.Catalog.Search(cmd.Context(), args))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Run one chat turn, or an interactive session when no message is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context())
		defer cleanup()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			res, err := a.Concierge.Chat(cmd.Context(), concierge.TurnRequest{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		}
		return runChatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.Concierge)
	},
}

type chatter interface {
	Chat(ctx context.Context, req concierge.TurnRequest) (*concierge.TurnResult, error)
}

// runChatLoop reads one message per line until EOF or "exit", carrying history and
// session id between turns. A failed turn is reported and leaves history untouched.
func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, c chatter) error {
	var (
		history   []ai.Message
		sessionID string
	)
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Tell me who you're shopping for. Type 'exit' to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		res, err := c.Chat(ctx, concierge.TurnRequest{SessionID: sessionID, Message: line, History: history})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		sessionID = res.SessionID
		history = append(history,
			ai.Message{Role: ai.RoleUser, Content: line},
			ai.Message{Role: ai.RoleAssistant, Content: res.Reply},
		)

		fmt.Fprintln(out, res.Reply)
		printProducts(out, res.Products)
	}
}

func printProducts(out io.Writer, products []catalog.Product) {
	for i, p := range products {
		fmt.Fprintf(out, "  %d. %s [%s] $%.2f %s\n", i+1, p.Name, p.SKU, p.Price, p.PDPURL)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

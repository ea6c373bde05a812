package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/config"
	"github.com/glovera/consult/internal/profile"
	"github.com/glovera/consult/internal/telemetry"
)

func newChatCmd() *cobra.Command {
	var profileFlags []string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a consultation on the terminal",
		Long: `Interactive consultation REPL against the in-memory catalog.
Type exit_chat to leave; the consultant may also end the conversation
itself once your questions are answered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			prof, err := parseProfileFlags(profileFlags)
			if err != nil {
				return err
			}
			return runChat(cfg, prof)
		},
	}

	cmd.Flags().StringArrayVar(&profileFlags, "profile", nil, "Profile field as key=value (repeatable)")
	return cmd
}

func parseProfileFlags(pairs []string) (profile.Profile, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	prof := make(profile.Profile, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --profile value %q, expected key=value", pair)
		}
		prof[k] = v
	}
	return prof, nil
}

func runChat(cfg *config.Config, prof profile.Profile) error {
	logger := telemetry.NewLogger(os.Stderr, parseLogLevel(cfg.LogLevel))
	ctx := context.Background()

	st, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctrl := chat.NewController(st.client, st.registry, st.translator, st.lookup, st.chatModel,
		chat.WithSystemPrompt(chat.PersonalizedSystemPrompt(prof)),
		chat.WithProfile(prof),
		chat.WithLogger(logger),
	)
	ctrl.Start(chat.InitialGreeting)
	fmt.Printf("Consultant: %s\n", chat.InitialGreeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit_chat" {
			fmt.Println("Consultant: Goodbye!")
			return nil
		}

		reply, err := ctrl.SubmitUserTurn(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("Consultant: %s\n", reply)

		if reply == chat.EndSentinel {
			return nil
		}
	}
}

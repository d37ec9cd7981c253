package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/socratutor/internal/session"
	"github.com/socratutor/internal/tutor"
)

// ChatCommand returns the CLI command for an interactive terminal session
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Start an interactive tutoring session in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "topic",
				Aliases: []string{"t"},
				Usage:   "Topic to focus the session on",
			},
			&cli.StringFlag{
				Name:  "difficulty",
				Usage: "Starting difficulty (beginner, intermediate, advanced)",
			},
			&cli.BoolFlag{
				Name:  "thoughts",
				Usage: "Show the tutor's reasoning before each reply",
			},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	cfg, err := loadRuntimeConfig(c)
	if err != nil {
		return err
	}

	difficulty := tutor.Difficulty(c.String("difficulty"))
	switch difficulty {
	case "", tutor.DifficultyBeginner, tutor.DifficultyIntermediate, tutor.DifficultyAdvanced:
	default:
		return fmt.Errorf("unknown difficulty: %s", difficulty)
	}

	manager, cleanup, err := buildManager(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := manager.Create(c.Context, c.String("topic"), "", difficulty)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer manager.Close(c.Context, sess.ID)

	fmt.Printf("Session %s started. Type /state for session info, /quit to exit.\n\n", sess.ID)
	fmt.Printf("Tutor: %s\n\n", session.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/quit" || input == "/exit":
			fmt.Println("Goodbye!")
			return nil
		case input == "/state":
			printSessionState(sess)
			continue
		}

		result, err := manager.HandleMessage(c.Context, sess.ID, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			continue
		}

		if c.Bool("thoughts") && result.Thought != "" {
			fmt.Printf("\n[thinking] %s\n", result.Thought)
		}
		fmt.Printf("\nTutor: %s\n\n", result.Reply)
	}
}

func printSessionState(sess *session.Session) {
	st := sess.State
	fmt.Println("--- Session State ---")
	fmt.Printf("Topic:          %s\n", orUnset(st.Topic))
	fmt.Printf("Sub-topic:      %s\n", orUnset(st.SubTopic))
	fmt.Printf("Difficulty:     %s\n", st.DifficultyLevel)
	fmt.Printf("Struggle count: %d\n", st.UserStruggleCount)
	fmt.Printf("MCQ active:     %t\n", st.MCQActive)
	fmt.Printf("Messages:       %d\n", len(st.Messages))
	fmt.Println("---------------------")
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

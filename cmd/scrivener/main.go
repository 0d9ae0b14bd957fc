// Command scrivener generates a contract in one shot from a project
// description or a blocks document and prints the result.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/pebblepay/scrivener/pkg/agent"
	"github.com/pebblepay/scrivener/pkg/blocks"
	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/log"
	"github.com/pebblepay/scrivener/pkg/pdf"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:  "scrivener",
		Usage: "Generate a freelance contract from a project description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"t"},
				Usage:   "Free-text project description",
			},
			&cli.StringFlag{
				Name:    "blocks-file",
				Aliases: []string{"b"},
				Usage:   "Path to a blocks document (JSON)",
			},
			&cli.StringFlag{
				Name:    "pdf",
				Usage:   "Write the contract to this PDF file as well",
			},
			&cli.StringFlag{
				Name:    "gemini-api-key",
				Usage:   "API key for the completion service",
				Sources: cli.EnvVars("GEMINI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "gemini-model",
				Usage:   "Completion model name",
				Sources: cli.EnvVars("GEMINI_MODEL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			st := flow.NewState()

			switch {
			case command.String("blocks-file") != "":
				raw, err := os.ReadFile(command.String("blocks-file"))
				if err != nil {
					return fmt.Errorf("reading blocks file: %w", err)
				}

				doc, err := blocks.Parse(raw)
				if err != nil {
					return err
				}

				st.BlocksInput = doc
			case command.String("text") != "":
				st.ChatInput = command.String("text")
			default:
				return fmt.Errorf("either --text or --blocks-file is required")
			}

			provider := completion.NewGemini(
				command.String("gemini-api-key"),
				logger,
				completion.WithModel(command.String("gemini-model")),
			)

			ag, err := agent.New(provider, logger)
			if err != nil {
				return err
			}

			if err := ag.RunPipeline(ctx, st); err != nil {
				return err
			}

			fmt.Println(st.ContractText)

			if st.Summary != "" {
				fmt.Println("\n--- PLAIN ENGLISH SUMMARY ---")
				fmt.Println(st.Summary)
			}

			if st.Validation != nil {
				fmt.Println("\n--- VALIDATION ---")
				fmt.Println(st.Validation.Report())
			}

			if out := command.String("pdf"); out != "" {
				title := ""
				if st.Spec != nil {
					title = st.Spec.Title
				}

				data, err := pdf.Render(title, st.ContractText)
				if err != nil {
					return err
				}

				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("writing pdf: %w", err)
				}

				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

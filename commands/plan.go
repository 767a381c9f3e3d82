package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/taskgraph"
)

func newPlanCmd(s *session) *cobra.Command {
	var (
		file        string
		imagePath   string
		extractOnly bool
	)

	cmd := &cobra.Command{
		Use:   "plan [descrição...]",
		Short: "Generate a plan and materialize its tasks",
		Long: `Generate a structured plan from a request and persist its tasks.

The request is read from the arguments, --file, or stdin. With a
configured API key the model generates the plan text; with
--extract-only (or no key) the input itself is parsed as plan text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readPlanInput(cmd, args, file)
			if err != nil {
				return err
			}

			var image []byte
			if imagePath != "" {
				image, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
			}

			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			var (
				doc   *plan.Document
				tasks []taskgraph.Task
			)
			if extractOnly || app.Config.Model.APIKey == "" {
				doc, tasks, err = app.Planner.PlanFromText(cmd.Context(), input)
			} else {
				doc, tasks, err = app.Planner.PlanFromRequest(cmd.Context(), input, image)
			}

			var partial *taskgraph.PartialFailureError
			switch {
			case err == nil:
			case errors.As(err, &partial):
				cmd.PrintErrf("Aviso: %d tarefa(s) não puderam ser salvas\n", partial.FailedCount)
			default:
				return err
			}

			printPlan(cmd, doc, tasks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the request from a file")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Attach an image to the request")
	cmd.Flags().BoolVar(&extractOnly, "extract-only", false, "Parse the input as plan text instead of generating")

	return cmd
}

func readPlanInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read request file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", fmt.Errorf("no request given: pass a description, --file, or pipe text on stdin")
	}
	return input, nil
}

func printPlan(cmd *cobra.Command, doc *plan.Document, tasks []taskgraph.Task) {
	cmd.Printf("Plano: %s\n", doc.Title)
	if doc.Description != "" {
		cmd.Printf("  %s\n", doc.Description)
	}
	for _, task := range tasks {
		cmd.Printf("\n[%s] %s (%s)\n", task.ID, task.Title, task.Priority)
		if task.Description != "" {
			cmd.Printf("    %s\n", task.Description)
		}
		for _, st := range task.Subtasks {
			cmd.Printf("    - %s\n", st.Title)
		}
	}
	cmd.Printf("\n%d tarefa(s) criadas\n", len(tasks))
}

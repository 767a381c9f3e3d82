package commands

import (
	"github.com/spf13/cobra"

	"github.com/c360studio/plantask/plan"
)

func newTasksCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(s),
		newTasksAddCmd(s),
		newTasksCompleteCmd(s),
		newTasksDeleteCmd(s),
	)
	return cmd
}

func newTasksListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			tasks, err := app.Tasks.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				cmd.Println("Nenhuma tarefa encontrada")
				return nil
			}

			for _, task := range tasks {
				status := " "
				if task.Completed {
					status = "x"
				}
				cmd.Printf("[%s] (%s) %s  %s\n", status, task.Priority, task.Title, task.ID)
				for _, st := range task.Subtasks {
					stStatus := " "
					if st.Completed {
						stStatus = "x"
					}
					cmd.Printf("    [%s] %s\n", stStatus, st.Title)
				}
			}
			return nil
		},
	}
}

func newTasksAddCmd(s *session) *cobra.Command {
	var (
		priority string
		subtasks []string
	)

	cmd := &cobra.Command{
		Use:   "add <título>",
		Short: "Create a task directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			task, err := app.Tasks.AddTask(cmd.Context(), args[0], plan.Priority(priority), subtasks)
			if err != nil {
				return err
			}
			cmd.Printf("Tarefa criada: %s (%s)\n", task.Title, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(plan.PriorityMedium), "Priority (alta, média, baixa)")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Subtask title (repeatable)")
	return cmd
}

func newTasksCompleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Tasks.CompleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("Tarefa concluída")
			return nil
		},
	}
}

func newTasksDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("Tarefa removida")
			return nil
		},
	}
}

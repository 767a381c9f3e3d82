package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/plan"
)

func newHistoryCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the event history",
	}

	cmd.AddCommand(
		newHistoryListCmd(s),
		newHistoryClearCmd(s),
		newHistoryPlansCmd(s),
	)
	return cmd
}

func newHistoryListCmd(s *session) *cobra.Command {
	var (
		typeFilter string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.Ledger.Hydrate(cmd.Context()); err != nil {
				return err
			}
			if limit == 0 {
				limit = app.Config.History.QueryLimit
			}

			entries := app.Ledger.Query(history.EntryType(typeFilter), limit)
			if len(entries) == 0 {
				cmd.Println("Histórico vazio")
				return nil
			}
			for _, entry := range entries {
				cmd.Printf("%s  %-16s  %s\n",
					entry.Timestamp.Format(time.DateTime), entry.Type, entry.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Filter by entry type")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show")
	return cmd
}

func newHistoryClearCmd(s *session) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.Ledger.Hydrate(cmd.Context()); err != nil {
				return err
			}
			if !app.Ledger.Clear(cmd.Context(), history.EntryType(typeFilter)) {
				return fmt.Errorf("some history entries could not be removed")
			}
			cmd.Println("Histórico limpo")
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Clear only this entry type")
	return cmd
}

func newHistoryPlansCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List archived plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			plans := app.Ledger.ListPlans(cmd.Context(), limit)
			if len(plans) == 0 {
				cmd.Println("Nenhum plano arquivado")
				return nil
			}
			for _, record := range plans {
				var doc plan.Document
				taskCount := 0
				if err := json.Unmarshal([]byte(record.JSON), &doc); err == nil {
					taskCount = len(doc.Tasks)
				}
				cmd.Printf("%s  %s (%d tarefas)\n",
					record.CreatedAt.Format(time.DateTime), record.Title, taskCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum plans to show")
	return cmd
}

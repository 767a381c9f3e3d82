package commands

import (
	"github.com/spf13/cobra"
)

func newModulesCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect and activate feature modules",
	}

	cmd.AddCommand(
		newModulesListCmd(s),
		newModulesLoadCmd(s),
	)
	return cmd
}

func newModulesListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered modules and their states",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}

			names := app.Registry.ListAvailableModules()
			if len(names) == 0 {
				cmd.Println("Nenhum módulo registrado")
				return nil
			}
			for _, name := range names {
				info := app.Registry.GetModule(name)
				cmd.Printf("%-12s %-12s %-8s %s\n",
					info.Name, info.State, info.Version, info.Description)
			}
			return nil
		},
	}
}

func newModulesLoadCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "load <nome>",
		Short: "Activate a module and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Registry.Load(args[0]); err != nil {
				return err
			}
			cmd.Printf("Módulo %s carregado\n", args[0])
			return nil
		},
	}
}

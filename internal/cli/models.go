package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/notes-flow/internal/output"
)

func NewModelsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models installed on the local model server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap := deps.App.Settings.Snapshot()

			local, err := deps.App.Providers.Local(ctx, snap)
			if err != nil {
				return err
			}
			models, err := local.ListModels(ctx)
			if err != nil {
				return err
			}

			f := output.NewFormatter(cmd.OutOrStdout())
			f.ModelListHeader(local.Endpoint())
			for _, m := range models {
				f.ModelListItem(m.Name, m.Size, m.Name == local.Model())
			}
			if sub := local.Substitution(); sub != "" {
				output.NewFormatter(os.Stderr).Warning(sub)
			}
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/team-logo-scraper/internal/config"
	"github.com/JakeFAU/team-logo-scraper/internal/storage/local"
)

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Prints the stored teams as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path := cfg.Scraper.OutputFile
			if root.output != "" {
				path = root.output
			}
			file, err := local.NewTeamFile(path)
			if err != nil {
				return err
			}
			teams, err := file.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load teams: %w", err)
			}

			rows := make([][]string, 0, teams.Len())
			for i, rec := range teams.Records() {
				rows = append(rows, []string{strconv.Itoa(i + 1), rec.TeamID, rec.TeamName, rec.LogoURL})
			}
			out := renderTable(
				[]string{"#", "Team ID", "Team", "Logo URL"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
				fmt.Sprintf("%d teams", teams.Len()),
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

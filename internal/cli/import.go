package cli

import (
	"fmt"

	"deck-dash-service/internal/infra/postgres"
	"deck-dash-service/internal/infra/sheets"
	"deck-dash-service/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewImportCmd loads a workbook or CSV export into the deck_cards table.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		sheet   string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import deck rows from a spreadsheet into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)

			rows, err := sheets.ReadFile(args[0], sheet)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			res, err := postgres.NewImporter(db).Import(cmd.Context(), rows, replace)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"imported": res.Imported,
				"skipped":  res.Skipped,
				"topics":   res.Topics,
			}).Info("deck rows imported")
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (defaults to the first sheet)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing cards of the imported topics first")
	return cmd
}

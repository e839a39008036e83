package cmd

import (
	"fmt"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/logging"
	"github.com/palmvoyage/tripfund/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagImportForce bool

var tripImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import trips from YAML or JSON files",
	Long: "Imports every .yaml, .yml and .json trip file under dir. Files unchanged since the\n" +
		"last import are skipped unless --force is given.",
	Args: cobra.ExactArgs(1),
	RunE: runTripImport,
}

func init() {
	tripImportCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-import unchanged files")
	tripCmd.AddCommand(tripImportCmd)
}

func runTripImport(cmd *cobra.Command, args []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	g, closeGeocoder := newGeocoder(ctx)
	defer closeGeocoder()

	progressf("  Scanning %s...\n", args[0])
	progressFn := func(current, total int) {
		progressf("\r  Importing %s", cli.RenderProgressBar(current, total, 30))
	}

	res, err := pipeline.ImportDir(ctx, args[0], st, pipeline.ImportOptions{
		Planner:  newPlanner(),
		Geocoder: g,
		Today:    now,
		Force:    flagImportForce,
		Log:      logging.Named("import"),
	}, progressFn)
	if res != nil && res.TotalFiles > res.Unchanged {
		progressf("\n")
	}
	if err != nil {
		return err
	}

	if res.TotalFiles == 0 {
		fmt.Println("  No trip files found.")
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Import",
		Headers: []string{"", "Count"},
		Rows: [][]string{
			{"Files", fmt.Sprint(res.TotalFiles)},
			{"Unchanged", fmt.Sprint(res.Unchanged)},
			{"Parsed", fmt.Sprint(res.Parsed)},
			{"Unreadable", fmt.Sprint(res.FileErrors)},
			{"Forgotten", fmt.Sprint(res.Forgotten)},
			{"---"},
			{"Trips imported", fmt.Sprint(res.Imported)},
			{"Trips rejected", fmt.Sprint(res.Invalid)},
			{"Stops located", fmt.Sprint(res.Located)},
		},
	}))
	for _, e := range res.Errors {
		fmt.Println(cli.RenderMuted("  " + e.Error()))
	}
	fmt.Println()
	return nil
}

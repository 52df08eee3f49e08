package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var layersSnapshotDir string

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Inspect the reference-layer snapshot",
}

var layersStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show layer availability and entry counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		layerStore, err := loadLayerStore(layersSnapshotDir)
		if err != nil {
			return eris.Wrap(err, "layers status")
		}

		avail := layerStore.Availability()
		counts := layerStore.Counts()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "LAYER\tLOADED\tENTRIES")
		_, _ = fmt.Fprintln(w, "-----\t------\t-------")
		for _, row := range []struct {
			name   string
			loaded bool
		}{
			{"designated_areas", avail.DesignatedAreas},
			{"opportunity_areas", avail.OpportunityAreas},
			{"amenities", avail.Amenities},
			{"transit_stops", avail.Transit},
			{"competing_projects", avail.CompetingProjects},
		} {
			_, _ = fmt.Fprintf(w, "%s\t%v\t%d\n", row.name, row.loaded, counts[row.name])
		}
		return w.Flush()
	},
}

func init() {
	layersCmd.PersistentFlags().StringVar(&layersSnapshotDir, "snapshot", "", "reference-layer snapshot directory (defaults to config)")
	layersCmd.AddCommand(layersStatusCmd)
	rootCmd.AddCommand(layersCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/prefs"
)

var viewCmd = &cobra.Command{
	Use:   "view [board|list]",
	Short: "Show or set the preferred view mode",
	Long:  "Show or set the persisted view mode. The view mode and sidebar preference are the only state that survives a restart.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := prefs.Load(prefsDir())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Fprintln(ui.Out, p.View)
			return nil
		}

		v := models.ViewType(args[0])
		if v != models.ViewBoard && v != models.ViewList {
			return fmt.Errorf("invalid view %q (want board or list)", args[0])
		}

		p.View = v
		if err := prefs.Save(prefsDir(), p); err != nil {
			return err
		}
		ui.Success("Default view set to %s", v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

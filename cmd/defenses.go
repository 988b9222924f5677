package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/defense-sim/defense-sim/sim"
)

// defensesCmd lists the registered defenses and their parameter schemas,
// the same schemas sweep grids are validated against.
var defensesCmd = &cobra.Command{
	Use:   "defenses",
	Short: "List available defenses and their parameter ranges",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.DefenseNames() {
			schema, _ := sim.DefenseSchema(name)
			fmt.Printf("%s\n", name)
			for _, p := range schema {
				fmt.Printf("  %-22s [%g, %g]\n", p.Name, p.Min, p.Max)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(defensesCmd)
}

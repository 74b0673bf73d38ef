package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "commerce",
	Short: "Order placement and inventory management CLI",
	Run: func(cmd *cobra.Command, args []string) {
		// ASCII banner on bare invocation (random font each run)
		fonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy", "rectangles"}
		fig := figure.NewFigure("Commerce ->", fonts[rand.Intn(len(fonts))], true)
		fig.Print()
		_ = cmd.Help()
	},
}

// Execute runs the CLI. Registered commands from custom packages are
// attached first.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sravan-dsai/newslens/internal/labelmap"
)

// Version info set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "newslens",
	Short: "News article classification from the command line",
	Long: `NewsLens classifies news articles into World, Sports, Business and
Sci/Tech using a hosted DistilBERT model fine-tuned on AG News.

Classify a single headline, a .txt file with one article per line, or a
.csv file with a 'text' column.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newslens %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the model's category labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		labels, err := labelmap.Load(cfg.LabelMapPath)
		if err != nil {
			return err
		}
		for i, name := range labels.Names() {
			fmt.Printf("%d\t%s\n", i, name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: newslens.yaml if present)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

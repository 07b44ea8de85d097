package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"playtrack/internal/logging"
	"playtrack/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export children and category records to a JSON file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		logging.Log.Infof("Exporting database to: %s", outputPath)
		if err := service.NewBackupService(a.children, a.records).Export(outputPath); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if info, err := os.Stat(outputPath); err == nil {
			logging.Log.Infof("Export complete! File size: %.2f KB", float64(info.Size())/1024)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import children and category records from a JSON file.",
	Long: `Import children and category records from a JSON file. Every record is
re-derived from its play data before it is written; a record with an achieved
level but no date aborts the import before anything is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, _ := cmd.Flags().GetString("input")
		clearExisting, _ := cmd.Flags().GetBool("clear")
		assumeYes, _ := cmd.Flags().GetBool("yes")

		if _, err := os.Stat(inputPath); err != nil {
			return fmt.Errorf("input file %s: %w", inputPath, err)
		}

		if clearExisting && !assumeYes {
			fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				logging.Log.Info("Import cancelled")
				return nil
			}
		}

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		logging.Log.Infof("Importing database from: %s", inputPath)
		stats, err := service.NewBackupService(a.children, a.records).Import(inputPath, clearExisting)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		logging.Log.WithFields(logrus.Fields{
			"children":  stats.Children,
			"records":   stats.Records,
			"rederived": stats.Rederived,
		}).Info("Import complete!")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringP("input", "i", "", "Input file path")
	importCmd.Flags().Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation when clearing")
	importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

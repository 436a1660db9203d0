package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/repository/implementation"
	"disaster-locator-bot/internal/repository/unitofwork"
	"disaster-locator-bot/internal/service"
	"disaster-locator-bot/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	collectionFlag string
	fileFlag       string
)

var rootCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a GeoJSON dataset into the resource store",
	Long: `Replace one resource collection with the features of a GeoJSON
FeatureCollection file. The whole collection is swapped in one transaction;
features without a usable geometry are skipped and counted.

Well-known collections:
  alanlar    - shelter network points
  kanbagisi  - blood donation points
  eczaneler  - field pharmacies`,
	Example: "  import --collection eczaneler --file data/eczaneler.geojson",
	RunE:    runImport,
}

func init() {
	rootCmd.Flags().StringVarP(&collectionFlag, "collection", "c", "", "collection name (required)")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "path to the GeoJSON file (required)")
	_ = rootCmd.MarkFlagRequired("collection")
	_ = rootCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	raw, err := os.ReadFile(fileFlag)
	if err != nil {
		return fmt.Errorf("read %s: %w", fileFlag, err)
	}
	var fc dto.GeoJSONFeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", fileFlag, err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	svc := service.NewResourceService(
		implementation.NewResourceRepository(db),
		unitofwork.NewRepositoryFactory(db),
		log,
	)

	summary, err := svc.Import(context.Background(), collectionFlag, fc)
	if err != nil {
		return err
	}

	color.Green("✅ Imported %d features into %q", summary.Imported, summary.Collection)
	if summary.Skipped > 0 {
		color.Yellow("⚠️  Skipped %d malformed features (see log)", summary.Skipped)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

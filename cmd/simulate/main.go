package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/implementation"
	"disaster-locator-bot/internal/repository/memory"
	"disaster-locator-bot/internal/service"
	"disaster-locator-bot/pkg/database"
	"disaster-locator-bot/pkg/locator"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	userFlag  string
	loadFlags []string
	useDB     bool
)

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Talk to the bot from the terminal",
	Long: `Run the conversation router locally and print its replies.

Input:
  any text            greeting and menu
  /select N           pick menu option N (1-4)
  /loc LAT LON        share a location
  /quit               exit

Sessions live in memory. Resources come from the database with --db, or
from GeoJSON files loaded with --load collection=path.`,
	Example: "  simulate --load eczaneler=data/eczaneler.geojson",
	RunE:    runSimulate,
}

func init() {
	rootCmd.Flags().StringVarP(&userFlag, "user", "u", "console-user", "chat identity to simulate")
	rootCmd.Flags().StringArrayVarP(&loadFlags, "load", "l", nil, "collection=path of a GeoJSON file for the in-memory store (repeatable)")
	rootCmd.Flags().BoolVar(&useDB, "db", false, "read resources from DB_CONNECTION_STRING")
}

// consoleSender prints replies instead of delivering them.
type consoleSender struct{}

func (consoleSender) Send(ctx context.Context, recipientId string, msg dto.OutboundMessage) error {
	switch msg.Kind {
	case dto.MessageKindText:
		color.Cyan("BOT: %s", strings.ReplaceAll(msg.Text, "\r\n", "\n     "))
	case dto.MessageKindList:
		color.Cyan("BOT: [%s] %s", msg.List.Title, msg.List.Text)
		for _, section := range msg.List.Sections {
			for _, row := range section.Rows {
				fmt.Printf("     %s  %s\n", color.YellowString(row.RowId), row.Title)
			}
		}
	case dto.MessageKindLocation:
		color.Green("BOT: 📍 %s (%.6f, %.6f)", msg.Location.Name, msg.Location.Latitude, msg.Location.Longitude)
		fmt.Printf("     %s\n", msg.Location.Address)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.NewNopLogger()

	var resources contract.ResourceRepository
	if useDB {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		resources = implementation.NewResourceRepository(db)
	} else {
		store := memory.NewResourceRepository()
		if err := loadCollections(service.NewResourceService(store, nil, log)); err != nil {
			return err
		}
		resources = store
	}

	gateway := locator.NewClient(locator.Config{
		BaseURL:   cfg.Locator.BaseURL,
		PagePath:  cfg.Locator.PagePath,
		Timeout:   cfg.Locator.Timeout,
		UserAgent: cfg.Locator.UserAgent,
	}, log)

	conversation := service.NewConversationService(
		memory.NewSessionRepository(0),
		service.NewStrategyRegistry(resources, gateway, cfg.Collections, cfg.Location()),
		consoleSender{},
		service.ConversationConfig{ClosingDelay: cfg.Bot.ClosingDelay},
		log,
	)

	color.HiWhite("=== Disaster Locator Console (user %s) ===", userFlag)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.HiBlackString("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return nil
		}

		ev, err := parseLine(userFlag, line)
		if err != nil {
			color.Red("%v", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := conversation.HandleEvent(ctx, ev); err != nil {
			color.Red("delivery error: %v", err)
		}
		cancel()
	}
}

func parseLine(user, line string) (dto.InboundEvent, error) {
	ev := dto.InboundEvent{SenderId: user, ReceivedAt: time.Now()}
	fields := strings.Fields(line)

	switch {
	case len(fields) == 2 && fields[0] == "/select":
		ev.SelectedOptionId = &fields[1]
	case len(fields) == 3 && fields[0] == "/loc":
		lat, errLat := strconv.ParseFloat(fields[1], 64)
		lon, errLon := strconv.ParseFloat(fields[2], 64)
		if errLat != nil || errLon != nil {
			return ev, fmt.Errorf("usage: /loc LAT LON")
		}
		ev.Location = &dto.LocationPayload{Latitude: lat, Longitude: lon}
	case strings.HasPrefix(line, "/"):
		return ev, fmt.Errorf("unknown command %q", fields[0])
	default:
		ev.Text = &line
	}
	return ev, nil
}

func loadCollections(svc service.IResourceService) error {
	for _, spec := range loadFlags {
		collection, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("--load expects collection=path, got %q", spec)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var fc dto.GeoJSONFeatureCollection
		if err := json.Unmarshal(raw, &fc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		summary, err := svc.Import(context.Background(), collection, fc)
		if err != nil {
			return err
		}
		color.HiBlack("loaded %d features into %s (%d skipped)", summary.Imported, collection, summary.Skipped)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

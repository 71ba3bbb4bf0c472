package main

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"campuseats/cmd"
	"campuseats/internal/db"
	"campuseats/internal/server"
	"campuseats/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	config, err := cmd.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if config.ShowVersion {
		fmt.Println("campuseats", version)
		return
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := db.SeedCatalog(database); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed catalog: %v\n", err)
		os.Exit(1)
	}

	if config.Serve {
		if err := serve(config, database); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Anything logged while the alt screen is up would corrupt it.
	if config.LogPath != "" {
		f, err := tea.LogToFile(config.LogPath, "campuseats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if !config.LocationEnabled {
		fmt.Fprintln(os.Stderr, "ℹ  Location disabled in onboarding settings; nearest-first sorting unavailable")
	}

	p := tea.NewProgram(ui.New(database, ui.Options{
		Locator:     config.Locator(),
		Geocoder:    config.Geocoder(),
		FlyDuration: config.FlyDuration,
		PrefsPath:   ui.PrefsPath(config.ConfigDir),
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

func serve(config *cmd.Config, database *sql.DB) error {
	catalog, err := db.ListRestaurants(database)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	srv := server.New(catalog, config.Geocoder())
	log.Printf("Serving %d restaurants on %s", len(catalog), config.Addr)
	return http.ListenAndServe(config.Addr, srv.Handler(server.DefaultAllowedOrigins))
}

package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"campuseats/internal/location"
	"campuseats/internal/model"

	"github.com/joho/godotenv"
)

// DefaultFlyDuration matches the map surface's fly-to animation.
const DefaultFlyDuration = 1200 * time.Millisecond

// Config holds CLI configuration.
type Config struct {
	DBPath       string
	ConfigDir    string
	NominatimURL string
	UserAgent    string
	IPLookupURL  string
	FlyDuration  time.Duration
	LogPath      string
	Serve        bool
	Addr         string
	ShowVersion  bool

	// LocationEnabled is false when the user declined location access.
	LocationEnabled bool
	// FixedLocation, when set, replaces network lookup.
	FixedLocation *model.UserLocation
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags() (*Config, error) {
	// Load .env files first so env-based defaults work with existing flag parsing.
	// Missing files are fine.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	config, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return nil, err
	}

	if err := resolveConfigDir(config); err != nil {
		return nil, err
	}

	settings, err := loadOnboardingSettings(config.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if !config.Serve && config.FixedLocation == nil && shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	applyOnboarding(config, settings)
	return config, nil
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	config := &Config{LocationEnabled: true}
	var lat, lng, accuracy, fly string

	fs.StringVar(&config.DBPath, "db", os.Getenv("CAMPUSEATS_DB"), "Path to SQLite database file (default: ~/.campuseats/campuseats.db)")
	fs.StringVar(&config.NominatimURL, "nominatim-url", os.Getenv("NOMINATIM_URL"), "Nominatim-compatible reverse geocoding base URL")
	fs.StringVar(&config.UserAgent, "user-agent", os.Getenv("CAMPUSEATS_USER_AGENT"), "User-Agent sent to the geocoder")
	fs.StringVar(&config.IPLookupURL, "iplookup-url", os.Getenv("IPLOOKUP_URL"), "IP geolocation endpoint")
	fs.StringVar(&lat, "lat", os.Getenv("CAMPUSEATS_LAT"), "Fixed latitude (skips network lookup)")
	fs.StringVar(&lng, "lng", os.Getenv("CAMPUSEATS_LNG"), "Fixed longitude (skips network lookup)")
	fs.StringVar(&accuracy, "accuracy", os.Getenv("CAMPUSEATS_ACCURACY"), "Accuracy in meters for a fixed location")
	fs.StringVar(&fly, "fly", "", "Map fly-to duration (default 1.2s)")
	fs.StringVar(&config.LogPath, "log", "", "Write debug log to this file")
	fs.BoolVar(&config.Serve, "serve", false, "Serve the discovery API over HTTP instead of the terminal UI")
	fs.StringVar(&config.Addr, "addr", "", "Listen address for -serve (default :$PORT or :8080)")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if (lat == "") != (lng == "") {
		return nil, fmt.Errorf("-lat and -lng must be given together")
	}
	if lat != "" {
		loc, err := parseCoordinates(lat + "," + lng)
		if err != nil {
			return nil, fmt.Errorf("invalid fixed location: %w", err)
		}
		if accuracy != "" {
			a, err := strconv.ParseFloat(strings.TrimSpace(accuracy), 64)
			if err != nil || a < 0 {
				return nil, fmt.Errorf("invalid accuracy %q", accuracy)
			}
			loc.Accuracy = a
		}
		config.FixedLocation = &loc
	}

	config.FlyDuration = DefaultFlyDuration
	if fly != "" {
		d, err := time.ParseDuration(fly)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid fly duration %q", fly)
		}
		config.FlyDuration = d
	}

	if config.Addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		config.Addr = ":" + port
	}

	return config, nil
}

func resolveConfigDir(config *Config) error {
	if config.DBPath != "" {
		config.ConfigDir = filepath.Dir(config.DBPath)
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	config.ConfigDir = filepath.Join(home, ".campuseats")
	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config.DBPath = filepath.Join(config.ConfigDir, "campuseats.db")
	return nil
}

func applyOnboarding(config *Config, settings OnboardingSettings) {
	if config.FixedLocation != nil {
		return
	}
	if settings.Completed && !settings.LocationEnabled {
		config.LocationEnabled = false
		return
	}
	config.FixedLocation = settings.FixedLocation
}

// Locator builds the location source the configuration asks for.
func (c *Config) Locator() location.Locator {
	switch {
	case c.FixedLocation != nil:
		return location.StaticLocator{Location: *c.FixedLocation}
	case !c.LocationEnabled:
		return location.DeniedLocator{}
	default:
		return location.NewIPLocator(c.IPLookupURL)
	}
}

// Geocoder builds the reverse geocoder client.
func (c *Config) Geocoder() location.ReverseGeocoder {
	return location.NewNominatimClient(c.NominatimURL, c.UserAgent)
}

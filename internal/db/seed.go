package db

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"campuseats/internal/model"
)

//go:embed seed/restaurants.json
var seedCatalog []byte

// SeedCatalog inserts the bundled campus catalog when the restaurants table is
// empty. It returns the number of rows inserted.
func SeedCatalog(db *sql.DB) (int, error) {
	n, err := CountRestaurants(db)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	var restaurants []model.Restaurant
	if err := json.Unmarshal(seedCatalog, &restaurants); err != nil {
		return 0, fmt.Errorf("failed to decode seed catalog: %w", err)
	}

	for _, r := range restaurants {
		if _, err := InsertRestaurant(db, r); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", r.Name, err)
		}
	}
	return len(restaurants), nil
}

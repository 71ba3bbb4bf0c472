package db

import (
	"database/sql"
	"fmt"

	"campuseats/internal/model"
)

const restaurantColumns = `id, name, cuisine, latitude, longitude, accepts_alt_payment, discount, hours, map_link`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(s rowScanner) (model.Restaurant, error) {
	var r model.Restaurant
	var cuisine, discount, hours, mapLink sql.NullString
	var altPayment int64

	if err := s.Scan(&r.ID, &r.Name, &cuisine, &r.Location.Lat, &r.Location.Lng, &altPayment, &discount, &hours, &mapLink); err != nil {
		return model.Restaurant{}, err
	}

	r.Cuisine = cuisine.String
	r.AcceptsAltPayment = altPayment == 1
	r.Discount = model.ParseDiscountTier(discount.String)
	r.Hours = hours.String
	r.MapLink = mapLink.String
	return r, nil
}

// ListRestaurants retrieves the full catalog in id order, with images and menu items attached.
func ListRestaurants(db *sql.DB) ([]model.Restaurant, error) {
	rows, err := db.Query(`SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	results := []model.Restaurant{}
	index := map[int64]int{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		index[r.ID] = len(results)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	images, err := listChildren(db, `SELECT restaurant_id, ref FROM restaurant_images ORDER BY restaurant_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	for id, refs := range images {
		if i, ok := index[id]; ok {
			results[i].Images = refs
		}
	}

	menus, err := listChildren(db, `SELECT restaurant_id, item FROM menu_items ORDER BY restaurant_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	for id, items := range menus {
		if i, ok := index[id]; ok {
			results[i].Menu = toMenu(items)
		}
	}

	return results, nil
}

// InsertRestaurant creates a restaurant with its images and menu items in one transaction.
func InsertRestaurant(db *sql.DB, r model.Restaurant) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cuisine, hours, mapLink interface{}
	if r.Cuisine != "" {
		cuisine = r.Cuisine
	}
	if r.Hours != "" {
		hours = r.Hours
	}
	if r.MapLink != "" {
		mapLink = r.MapLink
	}
	altPayment := 0
	if r.AcceptsAltPayment {
		altPayment = 1
	}

	result, err := tx.Exec(`
		INSERT INTO restaurants (name, cuisine, latitude, longitude, accepts_alt_payment, discount, hours, map_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Name, cuisine, r.Location.Lat, r.Location.Lng, altPayment, string(model.ParseDiscountTier(string(r.Discount))), hours, mapLink)
	if err != nil {
		return 0, fmt.Errorf("failed to insert restaurant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	for i, ref := range r.Images {
		if _, err := tx.Exec(`INSERT INTO restaurant_images (restaurant_id, position, ref) VALUES (?, ?, ?)`, id, i, ref); err != nil {
			return 0, fmt.Errorf("failed to insert image: %w", err)
		}
	}
	for i, m := range r.Menu {
		if _, err := tx.Exec(`INSERT INTO menu_items (restaurant_id, position, item) VALUES (?, ?, ?)`, id, i, m.Item); err != nil {
			return 0, fmt.Errorf("failed to insert menu item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// CountRestaurants returns the number of catalog entries.
func CountRestaurants(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM restaurants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	return n, nil
}

func listChildren(db *sql.DB, query string, args ...any) (map[int64][]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64][]string{}
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		out[id] = append(out[id], value)
	}
	return out, rows.Err()
}

func toMenu(items []string) []model.MenuItem {
	if len(items) == 0 {
		return nil
	}
	menu := make([]model.MenuItem, len(items))
	for i, item := range items {
		menu[i] = model.MenuItem{Item: item}
	}
	return menu
}

package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

type productSeed struct {
	name        string
	description string
	category    string
	unit        string
	imageURL    string
}

type priceSeed struct {
	product   string
	retailer  string
	price     string
	salePrice string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedRetailers(db)
	seedProducts(db)
	seedPrices(db)
	seedSampleList(db)

	log.Println("Seeding completed successfully!")
}

func seedRetailers(db *sql.DB) {
	retailers := []struct {
		name, logoURL, websiteURL string
	}{
		{"BudgetMart", "https://example.com/logos/budgetmart.png", "https://budgetmart.example.com"},
		{"FreshFoods", "https://example.com/logos/freshfoods.png", "https://freshfoods.example.com"},
		{"SuperStore", "https://example.com/logos/superstore.png", "https://superstore.example.com"},
	}
	for _, r := range retailers {
		_, err := db.Exec(`INSERT INTO retailers (name, logo_url, website_url)
SELECT $1, $2, $3
WHERE NOT EXISTS (SELECT 1 FROM retailers WHERE name = $1)`, r.name, r.logoURL, r.websiteURL)
		if err != nil {
			log.Fatalf("Failed seeding retailer %s: %v", r.name, err)
		}
		log.Printf("  Retailer: %s", r.name)
	}
}

func seedProducts(db *sql.DB) {
	products := []productSeed{
		{"Organic Whole Milk", "Fresh organic whole milk from grass-fed cows", "Dairy", "litre", "https://example.com/images/milk.jpg"},
		{"Free Range Eggs (6 pack)", "Farm fresh free range eggs", "Dairy", "pack", "https://example.com/images/eggs.jpg"},
		{"Fresh Apples (1kg)", "Crispy red apples, locally sourced", "Fruits & Vegetables", "kg", "https://example.com/images/apples.jpg"},
		{"Brown Rice (1kg)", "Whole grain brown rice", "Grains & Cereals", "kg", "https://example.com/images/rice.jpg"},
		{"Extra Virgin Olive Oil", "Cold-pressed extra virgin olive oil", "Oils & Condiments", "bottle", "https://example.com/images/olive-oil.jpg"},
		{"Raw Honey", "Pure unprocessed raw honey", "Spreads & Sweeteners", "jar", "https://example.com/images/honey.jpg"},
		{"Sourdough Bread", "Artisan sourdough bread, freshly baked", "Bakery", "loaf", "https://example.com/images/bread.jpg"},
		{"Cheddar Cheese", "Mature cheddar cheese block", "Dairy", "block", "https://example.com/images/cheese.jpg"},
		{"Breakfast Cereal", "Fortified breakfast cereal with vitamins", "Grains & Cereals", "box", "https://example.com/images/cereal.jpg"},
		{"Protein Energy Bar", "High protein snack bar", "Snacks", "bar", "https://example.com/images/protein-bar.jpg"},
	}
	for _, p := range products {
		_, err := db.Exec(`INSERT INTO products (name, description, category, unit, image_url)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`, p.name, p.description, p.category, p.unit, p.imageURL)
		if err != nil {
			log.Fatalf("Failed seeding product %s: %v", p.name, err)
		}
		log.Printf("  Product: %s", p.name)
	}
}

// seedPrices fills the price matrix, deliberately leaving gaps so the
// comparison has missing-item cases to exercise.
func seedPrices(db *sql.DB) {
	prices := []priceSeed{
		{"Organic Whole Milk", "BudgetMart", "1.49", ""},
		{"Organic Whole Milk", "FreshFoods", "1.79", ""},
		{"Organic Whole Milk", "SuperStore", "1.59", ""},
		{"Free Range Eggs (6 pack)", "BudgetMart", "2.29", ""},
		{"Free Range Eggs (6 pack)", "FreshFoods", "2.99", ""},
		{"Free Range Eggs (6 pack)", "SuperStore", "2.49", ""},
		{"Fresh Apples (1kg)", "BudgetMart", "1.99", "1.49"},
		{"Fresh Apples (1kg)", "FreshFoods", "2.49", ""},
		{"Fresh Apples (1kg)", "SuperStore", "2.19", ""},
		{"Brown Rice (1kg)", "BudgetMart", "2.49", ""},
		{"Brown Rice (1kg)", "FreshFoods", "2.99", ""},
		{"Brown Rice (1kg)", "SuperStore", "2.79", ""},
		{"Extra Virgin Olive Oil", "BudgetMart", "5.99", ""},
		{"Extra Virgin Olive Oil", "FreshFoods", "7.49", ""},
		{"Extra Virgin Olive Oil", "SuperStore", "6.49", ""},
		{"Raw Honey", "BudgetMart", "4.99", ""},
		{"Raw Honey", "FreshFoods", "6.99", ""},
		// SuperStore does not stock Raw Honey
		{"Sourdough Bread", "BudgetMart", "2.99", ""},
		{"Sourdough Bread", "FreshFoods", "3.49", "2.99"},
		{"Sourdough Bread", "SuperStore", "3.29", ""},
		{"Cheddar Cheese", "BudgetMart", "3.49", ""},
		// FreshFoods does not stock Cheddar Cheese
		{"Cheddar Cheese", "SuperStore", "3.79", ""},
		{"Breakfast Cereal", "BudgetMart", "3.29", ""},
		{"Breakfast Cereal", "FreshFoods", "3.99", ""},
		{"Breakfast Cereal", "SuperStore", "3.49", ""},
		// BudgetMart does not stock Protein Energy Bar
		{"Protein Energy Bar", "FreshFoods", "2.49", ""},
		{"Protein Energy Bar", "SuperStore", "2.29", ""},
	}
	for _, p := range prices {
		var salePrice sql.NullString
		if p.salePrice != "" {
			salePrice = sql.NullString{String: p.salePrice, Valid: true}
		}
		_, err := db.Exec(`INSERT INTO product_prices (product_id, retailer_id, price, is_on_sale, sale_price, in_stock)
SELECT pr.id, rt.id, $3::numeric, $4, $5::numeric, TRUE
FROM products pr, retailers rt
WHERE pr.name = $1 AND rt.name = $2
ON CONFLICT (product_id, retailer_id) DO UPDATE
SET price = EXCLUDED.price,
    is_on_sale = EXCLUDED.is_on_sale,
    sale_price = EXCLUDED.sale_price,
    in_stock = EXCLUDED.in_stock,
    updated_at = now()`, p.product, p.retailer, p.price, salePrice.Valid, salePrice)
		if err != nil {
			log.Fatalf("Failed seeding price %s @ %s: %v", p.product, p.retailer, err)
		}
		log.Printf("    Price: %s @ %s: %s", p.product, p.retailer, p.price)
	}
}

func seedSampleList(db *sql.DB) {
	var listID int64
	err := db.QueryRow(`SELECT id FROM shopping_lists WHERE user_id = 'testuser' AND name = 'Weekly Groceries'`).Scan(&listID)
	if err == sql.ErrNoRows {
		err = db.QueryRow(`INSERT INTO shopping_lists (user_id, name)
VALUES ('testuser', 'Weekly Groceries')
RETURNING id`).Scan(&listID)
	}
	if err != nil {
		log.Fatalf("Failed seeding shopping list: %v", err)
	}

	items := []struct {
		product  string
		quantity int
	}{
		{"Organic Whole Milk", 2},
		{"Fresh Apples (1kg)", 1},
		{"Sourdough Bread", 1},
		{"Cheddar Cheese", 1},
		{"Raw Honey", 1},
	}
	for _, it := range items {
		_, err := db.Exec(`INSERT INTO shopping_list_items (list_id, product_id, quantity)
SELECT $1, pr.id, $3
FROM products pr
WHERE pr.name = $2
ON CONFLICT (list_id, product_id) DO NOTHING`, listID, it.product, it.quantity)
		if err != nil {
			log.Fatalf("Failed seeding list item %s: %v", it.product, err)
		}
		log.Printf("    Added to list: %dx %s", it.quantity, it.product)
	}
	log.Printf("  Shopping list: Weekly Groceries (id=%d)", listID)
}

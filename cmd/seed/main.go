package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"pasar/internal/config"
	"pasar/internal/database"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

type demoProduct struct {
	name     string
	category string
	variants []services.VariantInput
}

var catalog = []demoProduct{
	{"Batik Shirt", "Fashion", []services.VariantInput{
		{Name: "M", SKU: "BTK-M", Price: decimal.RequireFromString("24.50"), Stock: 12},
		{Name: "L", SKU: "BTK-L", Price: decimal.RequireFromString("24.50"), Stock: 8},
	}},
	{"Kopi Toraja 250g", "Groceries", []services.VariantInput{
		{Name: "Whole bean", Price: decimal.RequireFromString("9.90"), Stock: 40},
		{Name: "Ground", Price: decimal.RequireFromString("9.90"), Stock: 25},
	}},
	{"Rattan Basket", "Home", []services.VariantInput{
		{Name: "Small", Price: decimal.RequireFromString("15"), Stock: 6},
		{Name: "Large", Price: decimal.RequireFromString("27"), Stock: 0},
	}},
}

func main() {
	var (
		vendorEmail = flag.String("vendor", "vendor@pasar.test", "email of the demo vendor")
		userEmail   = flag.String("user", "user@pasar.test", "email of the demo user")
		password    = flag.String("password", "password123", "password of both demo accounts")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not read .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN, MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	accounts := repositories.NewAccountRepositories(repositories.NewGORMUserRepository(db), repositories.NewGORMVendorRepository(db))
	auth := services.NewAuthService(accounts, nil, "seed", 0)
	products := services.NewProductService(repositories.NewGORMProductRepository(db), repositories.NewGORMShopRepository(db),
		repositories.NewGORMCategoryRepository(db), repositories.NewGORMReviewRepository(db))

	vendor, err := auth.Register(ctx, services.Registration{
		Role: models.RoleVendor, Name: "Demo Vendor", Email: *vendorEmail, Password: *password, StoreName: "Pasar Demo",
	})
	if err != nil {
		log.Fatalf("Failed to create vendor %s: %v", *vendorEmail, err)
	}
	if _, err := auth.Register(ctx, services.Registration{
		Role: models.RoleUser, Name: "Demo User", Email: *userEmail, Password: *password,
	}); err != nil {
		log.Fatalf("Failed to create user %s: %v", *userEmail, err)
	}

	shop := &models.Shop{Name: "Pasar Demo", Description: "Goods from the archipelago"}
	if err := products.CreateShop(ctx, vendor.ID, shop); err != nil {
		log.Fatalf("Failed to create shop: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Product", "Category", "Variant", "Price", "Stock", "Variant ID")
	for _, p := range catalog {
		product, err := products.CreateProduct(ctx, vendor.ID, services.ProductInput{
			ShopID:   shop.ID,
			Category: p.category,
			Name:     p.name,
			Images:   []string{},
			Variants: p.variants,
		})
		if err != nil {
			log.Fatalf("Failed to create product %s: %v", p.name, err)
		}
		for _, v := range product.Variants {
			if err := table.Append([]string{product.Name, p.category, v.Name, v.Price.StringFixed(2), fmt.Sprint(v.Stock), v.ID}); err != nil {
				log.Fatalf("Failed to render row: %v", err)
			}
		}
	}
	if err := table.Render(); err != nil {
		log.Fatalf("Failed to render table: %v", err)
	}
	log.Printf("Seeded vendor %s and user %s (password %q)", *vendorEmail, *userEmail, *password)
}

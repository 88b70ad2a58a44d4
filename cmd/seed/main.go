package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/pizza-delivery-backend/config"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/db"
)

const batchSize = 500

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <menu_xlsx_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	pizzaRepo := repository.NewPizzaRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	result, err := db.ReadMenuXLSX(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Pizzas to import: %d\n", len(result.Pizzas))
	if len(result.SkippedRows) > 0 {
		fmt.Printf("Skipped rows (invalid or duplicate): %v\n", result.SkippedRows)
	}
	if len(result.Pizzas) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := pizzaRepo.BulkCreate(result.Pizzas, batchSize); err != nil {
		log.Fatal("Failed to bulk create pizzas:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total pizzas imported: %d\n", len(result.Pizzas))
}

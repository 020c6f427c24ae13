package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"companion-marketplace/internal/config"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	pg "companion-marketplace/internal/infra/db/postgres"
)

// Applies the schema and seeds a couple of demo explorers with open trips.
// Safe to run repeatedly: it does nothing when trips already exist.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("deploy/postgres/init.sql")
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	tripRepo := pg.NewTripRepo(pool)
	if _, total, err := tripRepo.List(ctx, repository.NoTX, repository.TripQuery{}); err != nil {
		log.Fatalf("list trips: %v", err)
	} else if total > 0 {
		fmt.Printf("%d trips already present. No changes.\n", total)
		return
	}

	explorerRepo := pg.NewExplorerRepo(pool)
	seedTrips := []struct {
		fullName    string
		title       string
		destination string
	}{
		{"Rahim Uddin", "Sundarbans mangrove tour", "Khulna"},
		{"Farzana Akter", "Tea garden week", "Sylhet"},
		{"Tanvir Hasan", "Sea beach and marine drive", "Cox's Bazar"},
	}

	for _, s := range seedTrips {
		e, err := model.NewExplorer(uuid.NewString(), uuid.NewString(), s.fullName)
		if err != nil {
			log.Fatalf("new explorer: %v", err)
		}
		if err := explorerRepo.Save(ctx, repository.NoTX, e); err != nil {
			log.Fatalf("save explorer: %v", err)
		}

		t, err := model.NewTrip(uuid.NewString(), e.ID, s.title, s.destination)
		if err != nil {
			log.Fatalf("new trip: %v", err)
		}
		t.StartDate = time.Now().AddDate(0, 1, 0)
		t.EndDate = t.StartDate.AddDate(0, 0, 7)
		if err := tripRepo.Save(ctx, repository.NoTX, t); err != nil {
			log.Fatalf("save trip: %v", err)
		}
		fmt.Printf("seeded %s -> %s\n", s.fullName, s.title)
	}
}

package main

import (
	"log"

	"github.com/MrSnakeDoc/moteur/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ moteur failed to start: %v", err)
	}
}

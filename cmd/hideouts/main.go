package main

import (
	"context"
	"log"

	"github.com/psykzz/avalon-hideout-mapper/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("hideouts failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("hideouts stopped with error: %v", err)
	}
}

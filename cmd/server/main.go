package main

import (
	"context"
	"log"

	"dogwalk/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

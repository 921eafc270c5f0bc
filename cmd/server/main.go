package main

import (
	"flag"
	"log"

	"github.com/makkenzo/gdb-api/internal/bootstrap"
	_ "go.uber.org/automaxprocs"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	if err := bootstrap.Run(*configPath); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
}

package main

import (
	"log"

	"github.com/nferro/embeddingd/internal/config"
)

func main() {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("server: %+v", cfg.Server)
	log.Printf("model: %+v", cfg.Model)
	log.Printf("observability: %+v", cfg.Observability)
}

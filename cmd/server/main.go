package main

import (
	"log"
	"net/http"

	"rps/internal/config"
	"rps/internal/notify"
	"rps/internal/server"
	"rps/internal/service"
	"rps/internal/stats"
	"rps/internal/storage"
)

func main() {
	log.Printf("RPS server is starting")
	cfg := config.Load()

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	registry := notify.NewRegistry()
	agg := stats.New(store)
	svc := service.New(store, agg, registry)
	srv := server.New(svc, registry)

	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		log.Fatalf("server: %v", err)
	}
}

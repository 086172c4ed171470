package main

import (
	"fmt"
	"log"
	"net/http"

	"zen-guidance-backend/internal/config"
	"zen-guidance-backend/internal/server"
)

func main() {
	cfg := config.Load()
	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	addr := ":" + cfg.Port
	fmt.Printf("guidance server listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}

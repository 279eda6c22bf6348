package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/kahikatea/seiscan/pkg/seiscan"
)

var (
	addr           string
	dbPath         string
	allowedOrigins string
)

func init() {
	flag.StringVar(&addr, "addr", ":8137", "HTTP listen address")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SEISCAN_DB_PATH", "seiscan.sqlite3"), "Path to SQLite database")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := seiscan.NewService(seiscan.WithDBPath(dbPath))
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Addr:           addr,
		DBPath:         dbPath,
		AllowedOrigins: origins,
	}
	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

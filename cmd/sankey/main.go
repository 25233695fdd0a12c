package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MalithGihan/sankey-service/internal/api"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/internal/store"
)

func main() {
	_ = godotenv.Load()
	port := getenv("PORT", "8082")
	dataRoot := getenv("DATA_ROOT", "./projects")

	st, err := store.New(dataRoot)
	if err != nil {
		log.Fatal(err)
	}

	defaults := settings.Defaults()
	if path := os.Getenv("SETTINGS_FILE"); path != "" {
		if defaults, err = settings.LoadFile(path); err != nil {
			log.Fatal(err)
		}
		if _, err := settings.Resolve(defaults); err != nil {
			log.Fatalf("settings %s: %v", path, err)
		}
		if unknown := defaults.Unknown(); len(unknown) > 0 {
			log.Printf("settings %s: ignoring unknown keys %v", path, unknown)
		}
	}

	srv := &api.Server{Store: st, Palette: palette.Default(), Settings: defaults}

	log.Printf("sankey-service listening on :%s (data root %s)", port, dataRoot)
	log.Fatal(http.ListenAndServe(":"+port, srv.Routes()))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

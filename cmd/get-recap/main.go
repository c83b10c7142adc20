package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/riftrewind/internal/adapters/backendclient"
	"github.com/Amund211/riftrewind/internal/adapters/database"
	"github.com/Amund211/riftrewind/internal/adapters/snapshotrepository"
	"github.com/Amund211/riftrewind/internal/config"
	"github.com/Amund211/riftrewind/internal/domain"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal output: %v", err)
	}
	fmt.Println(string(data))
}

func getSnapshot(ctx context.Context, sessionID string) {
	conf, err := config.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDatabaseFromConfig(conf)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := snapshotrepository.NewPostgres(db, database.GetSchemaName(!conf.IsProduction()))
	snapshot, err := repo.GetSnapshot(ctx, sessionID)
	if err != nil {
		log.Fatalf("Failed to get snapshot: %v", err)
	}

	fmt.Printf("%s (%s) stored at %s\n", snapshot.RiotID, snapshot.Region, snapshot.StoredAt.Format(time.RFC3339))
	printJSON(snapshot.Data)
}

func getRecap(ctx context.Context, riotID, region string) {
	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		log.Fatal("No BACKEND_URL provided")
	}

	name, tag, err := domain.ParseRiotID(riotID)
	if err != nil {
		log.Fatalf("Invalid riot id: %v", err)
	}
	player, err := domain.NewPlayerID(name, tag, region)
	if err != nil {
		log.Fatalf("Invalid player: %v", err)
	}

	client, err := backendclient.NewBackendClient(&http.Client{Timeout: 5 * time.Minute}, backendURL)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	recap, err := client.GetMatchData(ctx, player)
	if err != nil {
		log.Fatalf("Failed to get recap: %v", err)
	}

	printJSON(recap.Summary())
	printJSON(recap.Payload)
}

func main() {
	sessionID := flag.String("session", "", "print the last recap stored for this session instead of fetching one")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-session id] [Name#TAG region]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := context.Background()

	if *sessionID != "" {
		getSnapshot(ctx, *sessionID)
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	getRecap(ctx, flag.Arg(0), flag.Arg(1))
}

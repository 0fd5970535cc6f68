package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/marcus/storefront/internal/docserver"
)

func runAdmin(args []string) {
	if len(args) == 0 {
		printAdminUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create-key":
		runAdminCreateKey(args[1:])
	case "stats":
		runAdminStats(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(1)
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, `Usage: docstore admin <command> [flags]

Commands:
  create-key  Generate a new API key for DOCSTORE_API_KEYS
  stats       Print document counts per collection`)
}

func runAdminCreateKey(args []string) {
	fs := flag.NewFlagSet("admin create-key", flag.ExitOnError)
	showHash := fs.Bool("hash", false, "also print the sha256 of the key")
	fs.Parse(args)

	key, err := docserver.GenerateAPIKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(key)
	if *showHash {
		fmt.Printf("sha256: %s\n", docserver.HashKey(key))
	}
	fmt.Fprintln(os.Stderr, "Add this key to DOCSTORE_API_KEYS and restart the server. It is not stored anywhere.")
}

func runAdminStats(args []string) {
	fs := flag.NewFlagSet("admin stats", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to docstore.db (default: from DOCSTORE_DB_PATH or ./data/docstore.db)")
	fs.Parse(args)

	cfg := docserver.LoadConfig()
	if *dbPath != "" {
		cfg.Backend = docserver.BackendSQLite
		cfg.DBPath = *dbPath
	}

	ctx := context.Background()
	store, err := openBackend(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open backend: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("no documents")
		return
	}
	for _, s := range stats {
		fmt.Printf("%-24s %d\n", s.Name, s.Documents)
	}
}

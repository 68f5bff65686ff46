package main

import (
	"fmt"
	"log"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"receipt-portal/internal/sheetstub"
)

func main() {
	fs := ff.NewFlagSet("sheet-stub")
	var (
		port    = fs.IntLong("port", 9090, "HTTP server port")
		verbose = fs.BoolLong("verbose", "Enable request logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SHEET_STUB"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	store := sheetstub.NewMemoryStore(*verbose)
	server := sheetstub.NewServer(store, *verbose)

	log.Printf("Starting sheet stub on port %d", *port)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

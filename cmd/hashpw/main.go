package main

import (
	"fmt"
	"log"
	"os"

	"receipt-portal/internal/auth"
)

// Prints a bcrypt hash for the given password, suitable for the
// admin.password_hash config field.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}

// Command tracker is the terminal front-end of the program tracker: it lists
// enrollments with their reconciled progression, shows a day, and submits
// meal and activity selections through the day-submission coordinator.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

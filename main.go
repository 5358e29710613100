package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"curator/cmd"
	"curator/database"

	log "github.com/sirupsen/logrus"
)

const usage = `curator runs guild raffles and predictions on Discord.

Usage:
  curator [run]                 start the bot
  curator migrate up            apply pending schema migrations
  curator migrate down [steps]  roll back migrations (default 1 step)
  curator migrate status        print the applied schema version
  curator help                  show this message`

func main() {
	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "run":
		runBot()
	case "migrate":
		if err := migrateSchema(os.Args[2:]); err != nil {
			log.WithError(err).Fatal("Schema migration failed")
		}
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", command, usage)
		os.Exit(2)
	}
}

// runBot serves until SIGINT or SIGTERM. Running activities are cancelled
// and their stakes refunded during shutdown.
func runBot() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Shutdown signal received, cancelling running activities")
	}()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Curator stopped with an error")
	}
}

func migrateSchema(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing migrate action\n\n%s", usage)
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migrate action %q\n\n%s", args[0], usage)
	}
}

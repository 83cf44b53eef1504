// Command reconcile matches a bank statement against pending payment proofs
// and prints the report. With --apply it verifies every clean match.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eursukkul/registration-engine/config"
	"github.com/Eursukkul/registration-engine/internal/app"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/Eursukkul/registration-engine/pkg/logger"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	statementPath := flag.StringP("statement", "s", "-", "bank statement text file, - for stdin")
	eventID := flag.UintP("event", "e", 0, "limit matching to one event")
	apply := flag.Bool("apply", false, "verify clean matches instead of only previewing")
	confirmDuplicates := flag.Bool("confirm-duplicates", false, "also verify matches whose UTR is shared with another registration")
	operator := flag.String("operator", "", "operator recorded as verified_by")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty).Output(os.Stderr)

	text, err := readStatement(*statementPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read statement")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise application")
	}
	defer a.Close()

	req := service.ReconcileRequest{
		StatementText:     text,
		ConfirmDuplicates: *confirmDuplicates,
		Operator:          *operator,
	}
	if *eventID != 0 {
		id := *eventID
		req.EventID = &id
	}

	run := a.Reconciliation.Preview
	if *apply {
		run = a.Reconciliation.Apply
	}
	result, err := run(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
}

func readStatement(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

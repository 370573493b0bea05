// Command genfixtures writes synthetic person entity graphs as JSONL for
// local pipeline runs.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbvera/pulse-data/internal/fixtures"
	"github.com/mbvera/pulse-data/pkg/logger"
)

func main() {
	numPersons := flag.Int("n", 100, "number of persons to generate")
	stateCode := flag.String("state", "", "fixed state code (random when empty)")
	outPath := flag.String("out", "persons.jsonl", "output JSONL path")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	loggerInstance := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := fixtures.New(fixtures.Config{
		NumPersons: *numPersons,
		StateCode:  *stateCode,
	})
	records, err := gen.Generate(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		loggerInstance.Error(ctx, "creating output file failed", logger.Error(err))
		os.Exit(1)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			loggerInstance.Error(ctx, "encoding person graph failed", logger.Error(err))
			os.Exit(1)
		}
	}
	if err := w.Flush(); err != nil {
		loggerInstance.Error(ctx, "flushing output failed", logger.Error(err))
		os.Exit(1)
	}

	loggerInstance.Info(ctx, "wrote fixtures",
		logger.String("path", *outPath),
		logger.Int("count", len(records)),
	)
}

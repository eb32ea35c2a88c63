package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/normalize"
	"github.com/poiesic/resolvit/store"
	storebadger "github.com/poiesic/resolvit/store/badger"
)

// Bundled fixture used when no -src file is given.
var defaultNames = []string{
	"John Smith",
	"Jane Smith",
	"Jonathan Smythe",
	"Ada Lovelace",
	"Alan Turing",
	"Grace Hopper",
	"José Müller",
	"Jose Muller-Santos",
	"Katherine Johnson",
	"Kathryn Jonson",
	"Margaret Hamilton",
	"Marge Hamilton",
	"Tim Berners-Lee",
	"Timothy Berners Lee",
	"Donald Knuth",
	"Don Knuth",
	"Barbara Liskov",
	"Edsger Dijkstra",
	"Edsgar Dykstra",
	"Claude Shannon",
}

var (
	seedFileName = flag.String("src", "", "YAML fixture of canonical records")
	dbPath       = flag.String("db", "./records_db", "BadgerDB record store directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func defaultRecords() []*core.CanonicalRecord {
	records := make([]*core.CanonicalRecord, 0, len(defaultNames))
	for _, name := range defaultNames {
		normalized := normalize.Normalize(name)
		records = append(records, &core.CanonicalRecord{
			Id:             core.IDFromContent(normalized),
			DisplayName:    name,
			NormalizedName: normalized,
		})
	}
	return records
}

func main() {
	ctx := context.Background()

	var records []*core.CanonicalRecord
	if *seedFileName != "" {
		var err error
		records, err = store.NewFileSource(*seedFileName).FetchAll(ctx)
		if err != nil {
			panic(err)
		}
	} else {
		records = defaultRecords()
	}

	backend, err := storebadger.OpenBackend(*dbPath, false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	recordStore := storebadger.NewRecordStore(backend)
	if _, err := recordStore.AddRecords(ctx, records...); err != nil {
		panic(err)
	}

	slog.Info("seeded record store", "db", *dbPath, "records", len(records))
}

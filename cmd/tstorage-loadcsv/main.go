// Command tstorage-loadcsv bulk-loads CSV rows into a TStorage connector
// via a single PUT request and reports the server's confirmation
// acquisition range for the caller-supplied key range.
package main

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	tstorage "github.com/atendeindustries/tstorage-clients"
	"github.com/atendeindustries/tstorage-clients/internal/logging"
	"github.com/atendeindustries/tstorage-clients/internal/metrics"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "tstorage-loadcsv: %v\n", err)
		fmt.Fprintf(stderr, "usage: tstorage-loadcsv [--log-format text|json] [--log-level debug|info|warn|error] [--metrics-addr :9100] host port cid_min mid_min moid_min cap_min acq_min cid_max mid_max moid_max cap_max acq_max csv_path\n")
		return 2
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.logLevel))
	l := logging.New(cfg.logFormat, level, stderr)
	logging.Set(l)

	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo("dev", "none", "none")
		metrics.StartHTTP(cfg.metricsAddr)
	}

	records, err := readCSV(cfg.csvPath)
	if err != nil {
		fmt.Fprintf(stderr, "tstorage-loadcsv: reading %s: %v\n", cfg.csvPath, err)
		return 2
	}

	ch := tstorage.NewChannel[[]byte](cfg.host, cfg.port, tstorage.BytesAdapter{}, tstorage.WithLogger(l))
	ctx := context.Background()
	if err := ch.Connect(ctx); err != nil {
		fmt.Fprintf(stderr, "tstorage-loadcsv: connect: %v\n", err)
		return 1
	}
	defer ch.Close()

	acqMin, acqMax, err := ch.Put(ctx, records)
	if err != nil {
		fmt.Fprintf(stderr, "tstorage-loadcsv: put: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "put %d records, acq range [%d, %d]\n", len(records), acqMin, acqMax)

	kr := tstorage.KeyRange{
		Min: tstorage.Key{CID: cfg.kr.cidMin, MID: cfg.kr.midMin, MOID: cfg.kr.moidMin, Cap: cfg.kr.capMin, Acq: cfg.kr.acqMin},
		Max: tstorage.Key{CID: cfg.kr.cidMax, MID: cfg.kr.midMax, MOID: cfg.kr.moidMax, Cap: cfg.kr.capMax, Acq: cfg.kr.acqMax},
	}
	confirmedAcq, err := ch.GetAcq(ctx, kr)
	if err != nil {
		fmt.Fprintf(stderr, "tstorage-loadcsv: getacq: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "confirmed acq for range: %d\n", confirmedAcq)
	return 0
}

// readCSV parses rows of cid,mid,moid,cap,payload_hex into a RecordsSet.
// The server assigns acq; Key.Acq is left zero.
func readCSV(path string) (tstorage.RecordsSet[[]byte], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	var out tstorage.RecordsSet[[]byte]
	lineNo := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cid, err := strconv.ParseInt(row[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: cid: %w", lineNo, err)
		}
		mid, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: mid: %w", lineNo, err)
		}
		moid, err := strconv.ParseInt(row[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: moid: %w", lineNo, err)
		}
		cap_, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: cap: %w", lineNo, err)
		}
		payload, err := hex.DecodeString(row[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: payload_hex: %w", lineNo, err)
		}
		out = append(out, tstorage.Record[[]byte]{
			Key:     tstorage.Key{CID: int32(cid), MID: mid, MOID: int32(moid), Cap: cap_},
			Payload: payload,
		})
	}
	return out, nil
}

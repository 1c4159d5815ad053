package main

import (
	"flag"
	"fmt"
	"strconv"
)

// loadConfig is the parsed form of the loader's flags (ambient: logging,
// metrics) plus its twelve mandatory positional arguments and the CSV path.
type loadConfig struct {
	logFormat   string
	logLevel    string
	metricsAddr string

	host string
	port int
	kr   struct {
		cidMin, moidMin        int32
		cidMax, moidMax        int32
		midMin, capMin, acqMin int64
		midMax, capMax, acqMax int64
	}
	csvPath string
}

const positionalCount = 13

// parseFlags parses --log-format/--log-level/--metrics-addr, then the
// twelve positional key-range arguments plus the CSV path:
// host port cid_min mid_min moid_min cap_min acq_min cid_max mid_max
// moid_max cap_max acq_max csv_path
func parseFlags(args []string) (*loadConfig, error) {
	fs := flag.NewFlagSet("tstorage-loadcsv", flag.ContinueOnError)
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := fs.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &loadConfig{logFormat: *logFormat, logLevel: *logLevel, metricsAddr: *metricsAddr}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.parsePositionals(fs.Args()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the ambient flags' values. It does not touch the
// positional arguments, which parsePositionals validates as it converts
// them.
func (c *loadConfig) validate() error {
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	return nil
}

func (c *loadConfig) parsePositionals(args []string) error {
	if len(args) != positionalCount {
		return fmt.Errorf("expected %d positional arguments, got %d", positionalCount, len(args))
	}
	c.host = args[0]
	c.csvPath = args[12]

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	c.port = port

	i32 := func(name, s string) int32 {
		if err != nil {
			return 0
		}
		var v int64
		v, err = strconv.ParseInt(s, 10, 32)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		return int32(v)
	}
	i64 := func(name, s string) int64 {
		if err != nil {
			return 0
		}
		var v int64
		v, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		return v
	}

	c.kr.cidMin = i32("cid_min", args[2])
	c.kr.midMin = i64("mid_min", args[3])
	c.kr.moidMin = i32("moid_min", args[4])
	c.kr.capMin = i64("cap_min", args[5])
	c.kr.acqMin = i64("acq_min", args[6])
	c.kr.cidMax = i32("cid_max", args[7])
	c.kr.midMax = i64("mid_max", args[8])
	c.kr.moidMax = i32("moid_max", args[9])
	c.kr.capMax = i64("cap_max", args[10])
	c.kr.acqMax = i64("acq_max", args[11])
	return err
}

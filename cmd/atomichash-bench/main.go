// atomichash-bench drives a concurrent add/get/delete workload against an
// atomichash.Table and reports throughput and occupancy statistics.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	flag "github.com/spf13/pflag"

	"github.com/concurrenthash/atomichash/internal/workload"
	"github.com/concurrenthash/atomichash/pkg/atomichash"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "atomichash-bench: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("atomichash-bench", flag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to a JSONC config file (overrides defaults, overridden by flags)")
	capacity := fs.Uint64("capacity", 0, "table capacity (max entries); 0 keeps the config/default value")
	keySpace := fs.Int("key-space", 0, "number of distinct keys in the workload; 0 keeps the config/default value")
	workers := fs.Int("workers", 0, "number of concurrent workers; 0 keeps the config/default value")
	ops := fs.Int("ops", 0, "total operations across all workers; 0 keeps the config/default value")
	seed := fs.Int64("seed", 0, "workload random seed; 0 keeps the config/default value")
	out := fs.String("out", "", "write the stats report to this file in addition to stdout")
	verbose := fs.BoolP("verbose", "v", false, "enable structured logging of rare-path table events")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadBenchConfig(*configPath, defaultBenchConfig())
	if err != nil {
		return err
	}
	if *capacity != 0 {
		cfg.Capacity = *capacity
	}
	if *keySpace != 0 {
		cfg.KeySpace = *keySpace
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *ops != 0 {
		cfg.Ops = *ops
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	var logger *logiface.Logger[*stumpy.Event]
	if *verbose {
		logger = stumpy.L.New(stumpy.L.WithStumpy())
	}

	tbl, err := atomichash.New(atomichash.Options{
		MaxEntries: cfg.Capacity,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	defer tbl.Close()

	mix := workload.Mix{Add: cfg.AddWeight, Get: cfg.GetWeight, Delete: cfg.DelWeight}
	opsPerWorker := cfg.Ops / cfg.Workers

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(workerSeed int64) {
			defer wg.Done()
			gen := workload.New(workerSeed, cfg.KeySpace, mix)
			for i := 0; i < opsPerWorker; i++ {
				step := gen.Next()
				switch step.Op {
				case workload.OpAdd:
					_, _ = tbl.Add(step.Key, step.Value, time.Minute, nil, nil)
				case workload.OpGet:
					_, _ = tbl.Get(step.Key, nil, nil)
				case workload.OpDelete:
					_, _ = tbl.Delete(step.Key, nil, nil)
				}
			}
		}(cfg.Seed + int64(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	report := tbl.Stats().Report(elapsed)
	fmt.Print(report)

	if *out != "" {
		if err := writeReport(*out, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

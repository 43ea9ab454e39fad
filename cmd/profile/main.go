// Command profile runs a conversion workload and writes pprof profiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// workloadInputs covers prefixes, composite units, offsets and aliases.
var workloadInputs = []string{
	"100 kg",
	"1 J",
	"101325 Pa",
	"9.81 m/s**2",
	"3.5 kWh",
	"25 degC",
	"12 mA",
	"1 lday",
	"2 亩",
	"5 斤",
}

func main() {
	var (
		duration     = flag.Duration("duration", 30*time.Second, "Profiling duration")
		outputDir    = flag.String("output", "./profiles", "Output directory for profiles")
		profileTypes = flag.String("types", "cpu,memory", "Profile types (cpu,memory,block,mutex,goroutine,all)")
		workers      = flag.Int("workers", runtime.NumCPU(), "Concurrent conversion workers")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -types cpu -duration 30s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -types all -workers 16\n", os.Args[0])
	}
	flag.Parse()

	types := parseProfileTypes(*profileTypes)

	fmt.Printf("Starting conversion profiling...\n")
	fmt.Printf("Duration: %v, workers: %d\n", *duration, *workers)
	fmt.Printf("Profile types: %s\n", strings.Join(types, ","))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if slices.Contains(types, "block") {
		runtime.SetBlockProfileRate(1)
	}
	if slices.Contains(types, "mutex") {
		runtime.SetMutexProfileFraction(1)
	}

	if slices.Contains(types, "cpu") {
		f, err := os.Create(filepath.Join(*outputDir, "cpu.prof"))
		if err != nil {
			log.Fatalf("Failed to create CPU profile: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	reg, err := units.NewRegistry(units.WithLogger(zap.NewNop()))
	if err != nil {
		log.Fatalf("Failed to build registry: %v", err)
	}
	if _, err := reg.RegisterAliases(units.ChineseUnits); err != nil {
		log.Fatalf("Failed to register aliases: %v", err)
	}
	presets := uniunit.NewDefaultPresets(reg)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	count, err := runWorkload(ctx, presets, workloadInputs, *workers)
	if err != nil {
		log.Fatalf("Workload failed: %v", err)
	}
	elapsed := time.Since(start)
	fmt.Printf("%d conversions in %v (%.0f/s)\n", count, elapsed.Round(time.Millisecond), float64(count)/elapsed.Seconds())

	if slices.Contains(types, "memory") {
		path := filepath.Join(*outputDir, "mem.prof")
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("Failed to create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("Failed to write memory profile: %v", err)
		}
		fmt.Printf("Memory profile written to: %s\n", path)
	}

	for _, profileType := range []string{"block", "mutex", "goroutine"} {
		if slices.Contains(types, profileType) {
			writeProfile(profileType, filepath.Join(*outputDir, profileType+".prof"))
		}
	}

	fmt.Printf("Profiling completed successfully\n")
}

// runWorkload converts every input from every preset into every other preset
// on each worker until ctx is done, and returns the number of conversions.
func runWorkload(ctx context.Context, presets *uniunit.Presets, inputs []string, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}

	names := presets.List()
	systems := make([]*uniunit.UnitSystem, len(names))
	for i, name := range names {
		system, err := presets.Get(name)
		if err != nil {
			return 0, err
		}
		systems[i] = system
	}

	values := make([]uniunit.Value, len(inputs))
	for i, in := range inputs {
		q, err := presets.Registry().Parse(in)
		if err != nil {
			return 0, err
		}
		values[i] = uniunit.FromQuantity(q)
	}

	var count atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				for _, src := range systems {
					for _, dst := range systems {
						for _, v := range values {
							if gctx.Err() != nil {
								return nil
							}
							if _, err := dst.ConvertFrom(v, src); err != nil {
								return err
							}
							count.Add(1)
						}
					}
				}
			}
		})
	}

	err := g.Wait()
	return count.Load(), err
}

// writeProfile writes a specific profile type to file
func writeProfile(profileName, filename string) {
	profile := pprof.Lookup(profileName)
	if profile == nil {
		fmt.Printf("Profile %s not found\n", profileName)
		return
	}

	f, err := os.Create(filename)
	if err != nil {
		log.Printf("Failed to create %s profile: %v", profileName, err)
		return
	}
	defer f.Close()

	if err := profile.WriteTo(f, 0); err != nil {
		log.Printf("Failed to write %s profile: %v", profileName, err)
		return
	}

	fmt.Printf("%s profile written to: %s\n", profileName, filename)
}

// parseProfileTypes parses the profile types string
func parseProfileTypes(typesStr string) []string {
	if typesStr == "all" {
		return []string{"cpu", "memory", "block", "mutex", "goroutine"}
	}

	parts := strings.Split(typesStr, ",")
	types := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "cpu", "memory", "mem", "block", "mutex", "goroutine":
			if part == "mem" {
				part = "memory"
			}
			if !slices.Contains(types, part) {
				types = append(types, part)
			}
		}
	}

	return types
}

// hllsketch-inspect is a diagnostic tool for inspecting a single serialized
// HyperLogLog sketch image. It heapifies the file, validates the preamble,
// and prints a summary. With -detail it also walks every register; with -v
// it additionally dumps the HLL_4 auxiliary exception table, if present.
//
// Usage
//
//	hllsketch-inspect -file sketch.bin
//	hllsketch-inspect -file sketch.bin -detail
//	hllsketch-inspect -file sketch.bin -detail -v
//
// Exit Codes
//
// 0: the image is well-formed.
// 1: the image is corrupt or unreadable.
package main

import (
	"flag"
	"log/slog"
	"os"

	"sketchcore.dev/hll/internal/pds/hyperloglog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	filePath := flag.String("file", "sketch.bin", "Path to a serialized HLL sketch image")
	detail := flag.Bool("detail", false, "Print every register value")
	verbose := flag.Bool("v", false, "With -detail, also print HLL_4 auxiliary exceptions")
	numStdDev := flag.Int("stddev", 1, "numStdDev used for the printed confidence bounds")
	flag.Parse()

	data, err := os.ReadFile(*filePath)
	if err != nil {
		die(logger, "cannot read file", err)
	}

	sketch, err := hyperloglog.Heapify(data)
	if err != nil {
		die(logger, "image failed to parse", err)
	}

	logger.Info("loaded sketch",
		"file", *filePath,
		"bytes", len(data),
		"mode", sketch.GetCurMode(),
		"lgConfigK", sketch.GetLgConfigK(),
		"tgtHllType", sketch.GetTgtHllType().String(),
	)

	est, err := sketch.GetEstimate()
	if err != nil {
		die(logger, "estimate computation failed", err)
	}
	lb, err := sketch.GetLowerBound(*numStdDev)
	if err != nil {
		die(logger, "lower bound computation failed", err)
	}
	ub, err := sketch.GetUpperBound(*numStdDev)
	if err != nil {
		die(logger, "upper bound computation failed", err)
	}

	logger.Info("estimate",
		"value", est,
		"lowerBound", lb,
		"upperBound", ub,
		"numStdDev", *numStdDev,
	)
	opts := hyperloglog.DebugOptions{Summary: true, Detail: *detail, AuxDetail: *detail && *verbose}
	if *detail {
		logger.Info("memory footprint", "bytes", sketch.MemoryFootprint())
	}
	logger.Info(sketch.DebugString(opts))
}

func die(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

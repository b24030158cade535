// Command srcprobe samples a delimited file and prints a draft source
// descriptor for the pipeline config, including the warehouse table its
// header matches best.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/srcprobe"
)

var (
	flagPath  = flag.String("path", "", "local file to sample")
	flagURL   = flag.String("url", "", "URL to sample instead of a local file")
	flagName  = flag.String("name", "new_source", "connector name for the drafted descriptor")
	flagBytes = flag.Int("bytes", 64*1024, "number of bytes to sample from the start of the file")
)

func main() {
	flag.Parse()

	res, err := srcprobe.Probe(context.Background(), srcprobe.Options{
		Path:     *flagPath,
		URL:      *flagURL,
		Name:     *flagName,
		MaxBytes: *flagBytes,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "probe failed:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

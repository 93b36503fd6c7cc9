// Command fillreport summarizes field fill rates across extraction CSVs and
// renders a markdown quality report.
//
// Usage:
//
//	fillreport -out report.md output/*.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"bdc_soi/pkg/core/report"
)

func main() {
	godotenv.Load()

	outPath := flag.String("out", "", "write the markdown report here instead of stdout")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: fillreport [-out report.md] file.csv [file.csv ...]")
		os.Exit(1)
	}

	rep := report.Analyze(paths)
	for path, reason := range rep.Skipped {
		fmt.Fprintf(os.Stderr, "skipping %s: %s\n", path, reason)
	}

	md := report.RenderMarkdown(rep)
	if !report.ValidateMarkdown(md) {
		fmt.Fprintln(os.Stderr, "rendered report is not valid markdown")
		os.Exit(1)
	}

	if *outPath == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing report: %v\n", err)
		os.Exit(1)
	}
}

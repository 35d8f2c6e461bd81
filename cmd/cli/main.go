package main

import (
	"fmt"
	"os"

	"github.com/your-org/wfreport/internal/app"
	"github.com/your-org/wfreport/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "-v" || command == "--version" || command == "version" {
		fmt.Println(version.String())
		return
	}
	args := os.Args[2:]

	switch command {
	case "analyze":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: wfreport-cli analyze <platform.yaml> <workflow.json> <trace.json>")
			os.Exit(1)
		}
		if err := app.Analyze(args[0], args[1], args[2], os.Stdout); err != nil {
			if app.IsPersistenceFailure(err) {
				fmt.Fprintf(os.Stderr, "cli analyze: report not persisted: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stderr, "cli analyze failed: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: wfreport-cli validate <platform.yaml> <workflow.json>")
			os.Exit(1)
		}
		if err := app.Validate(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "cli validate failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("inputs are valid: %s %s\n", args[0], args[1])
	case "verify":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: wfreport-cli verify <trace.json> <metrics.json>")
			os.Exit(1)
		}
		if err := app.VerifyMetrics(args[0], args[1], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli verify failed: %v\n", err)
			os.Exit(1)
		}
	case "journal-export":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: wfreport-cli journal-export <journal.jsonl> [output_csv]")
			os.Exit(1)
		}
		outputPath := "journal.csv"
		if len(args) > 1 {
			outputPath = args[1]
		}
		if err := app.ExportJournal(args[0], outputPath, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli journal-export failed: %v\n", err)
			os.Exit(1)
		}
	case "scaffold":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: wfreport-cli scaffold <target_dir> [name]")
			os.Exit(1)
		}
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		if err := app.ScaffoldSample(args[0], name, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cli scaffold failed: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: wfreport-cli <analyze|validate|verify|journal-export|scaffold|version> [args]")
}

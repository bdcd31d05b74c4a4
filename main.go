package main

import (
	"fmt"
	"os"

	"github.com/zalepa/fleetkpi/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmd.Serve(os.Args[2:])
	case "summary":
		cmd.Summary(os.Args[2:])
	case "report":
		cmd.Report(os.Args[2:])
	case "generate":
		cmd.Generate(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: fleetkpi <command>\n\nCommands:\n  serve      Serve the KPI dashboard and JSON API\n  summary    Print the KPI summary for a data directory\n  report     Write a PDF KPI report\n  generate   Write a synthetic weekly KPI dataset\n")
}

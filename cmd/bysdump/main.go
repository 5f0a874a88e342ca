// bysdump prints the decoded header and leading raw samples of a .bys
// session log. Debug aid for inspecting unfamiliar files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yangkang5303/sleep/src/analysis"
	"github.com/yangkang5303/sleep/src/bys"
)

func main() {
	var file string
	var n int
	flag.StringVar(&file, "file", "", "Path to the .bys session log")
	flag.IntVar(&n, "n", 40, "Max raw samples to print")
	flag.Parse()
	if file == "" {
		fmt.Fprintln(os.Stderr, "missing required -file")
		os.Exit(2)
	}
	buf, err := bys.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	hdr, err := bys.DecodeHeader(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	samples := bys.DecodeSamples(buf)
	fmt.Printf("File:        %s (%d bytes, %d samples)\n", file, len(buf), len(samples))
	fmt.Printf("Start time:  %s\n", hdr.StartTime)
	fmt.Printf("End time:    %s\n", hdr.EndTime)
	fmt.Printf("Model:       %s\n", hdr.DeviceModel)
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		marker := ""
		if i == analysis.PayloadStart {
			marker = "  <- payload start"
		}
		if i == len(samples)-1 {
			marker = "  <- footer (excluded)"
		}
		fmt.Printf("[%4d] %5d (0x%04x)%s\n", i, samples[i], samples[i], marker)
	}
}

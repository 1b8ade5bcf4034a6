// Command stackdraw renders a substrate stack definition as a labeled
// diagram (PDF or PNG) or a quick raster preview.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"stackup/internal/render"
	"stackup/internal/stackdef"
)

func main() {
	defPath := flag.String("def", "", "Path to stack definition (JSON)")
	out := flag.String("o", "", "Output file")
	format := flag.String("format", "pdf", "Output format: pdf, png or preview")
	pages := flag.Int("pages", 3, "Number of pages the diagram is stretched across")
	remove := flag.String("remove", "", "Comma-separated metals to remove first")
	simplify := flag.Bool("simplify", false, "Simplify the stack before drawing")
	flag.Parse()

	if *defPath == "" || *out == "" {
		fmt.Println("Usage: stackdraw -def <stack.json> -o <file> [-format pdf|png|preview] [-pages 3] [-remove ME1] [-simplify]")
		os.Exit(1)
	}

	def, err := stackdef.Load(*defPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load definition: %v\n", err)
		os.Exit(1)
	}
	s, err := def.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build stack: %v\n", err)
		os.Exit(1)
	}

	for _, name := range strings.Split(*remove, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.RemoveMetalLayerByName(name); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove metal: %v\n", err)
			os.Exit(1)
		}
	}
	if *simplify {
		if err := s.Simplify(); err != nil {
			fmt.Fprintf(os.Stderr, "Simplify failed: %v\n", err)
			os.Exit(1)
		}
	}

	opts := render.DefaultOptions()
	opts.Pages = *pages

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	switch *format {
	case "pdf":
		err = render.New(s, opts).WritePDF(f)
	case "png":
		err = render.New(s, opts).WritePNG(f)
	case "preview":
		err = render.WritePreviewPNG(s, 800, 1200, opts, f)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

// Command stackup builds a substrate stack from a JSON definition,
// optionally strips metals and simplifies the oxide stack, and exports
// Momentum and Sonnet technology files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"stackup/internal/export"
	"stackup/internal/stack"
	"stackup/internal/stackdef"
	"stackup/internal/version"
	"stackup/pkg/units"
)

func main() {
	defPath := flag.String("def", "", "Path to stack definition (JSON)")
	remove := flag.String("remove", "", "Comma-separated metals to remove before simplifying")
	simplify := flag.Bool("simplify", false, "Merge oxide layers down to the minimum interface count")
	momentum := flag.String("momentum", "", "Write a Momentum substrate to <name>.slm")
	ground := flag.Bool("ground", false, "Terminate the Momentum substrate with an infinite ground plane")
	sonnet := flag.String("sonnet", "", "Write a Sonnet technology file to <name>.son")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (commit %s)\n", version.Name, version.Version, version.GitCommit)
		return
	}
	if *defPath == "" {
		fmt.Println("Usage: stackup -def <stack.json> [-remove ME1,ME2] [-simplify] [-momentum <name> [-ground]] [-sonnet <name>]")
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
	fmt.Printf("Loaded %q: %d oxide layers, %d metals, %d vias\n",
		def.Name, s.OxideCount(), len(s.Metals()), len(s.Vias()))

	for _, name := range strings.Split(*remove, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := s.RemoveMetalLayerByName(name); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove metal: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed metal %s\n", name)
	}

	if *simplify {
		before := s.InterfaceCount()
		if err := s.Simplify(); err != nil {
			fmt.Fprintf(os.Stderr, "Simplify failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Simplified: %d -> %d interfaces\n", before, s.InterfaceCount())
	}

	printSummary(s)

	if *momentum != "" {
		if err := export.WriteMomentumSubstrate(s, *momentum, *ground); err != nil {
			fmt.Fprintf(os.Stderr, "Momentum export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s.slm\n", *momentum)
	}
	if *sonnet != "" {
		if err := export.WriteSonnetTechnology(s, *sonnet); err != nil {
			fmt.Fprintf(os.Stderr, "Sonnet export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s.son\n", *sonnet)
	}
}

// printSummary prints the stack top to bottom the way design kit stackup
// tables are laid out.
func printSummary(s *stack.Stack) {
	fmt.Printf("\nStack height: %g um\n", s.Height()/units.UM)
	fmt.Printf("%-6s %12s %8s %10s\n", "Layer", "d (um)", "eps_r", "tan_d")
	for k := s.OxideCount() - 1; k >= 0; k-- {
		ox := s.Oxide(k)
		fmt.Printf("ox%-4d %12g %8g %10g\n", k+1, ox.Thickness/units.UM, ox.EpsilonRel, ox.LossTangent)
	}
	bulk := s.Bulk()
	fmt.Printf("%-6s %12g %8g %10g\n", "bulk", bulk.Thickness/units.UM, bulk.EpsilonRel, bulk.LossTangent)

	if metals := s.MetalsBottomToTop(); len(metals) > 0 {
		fmt.Printf("\n%-10s %6s %12s %14s %14s\n", "Metal", "itf", "d (um)", "Rs (mOhm/sq)", "sigma (S/m)")
		for _, m := range metals {
			bottom, _ := s.MetalInterfaces(m)
			fmt.Printf("%-10s %6d %12g %14g %14.4g\n", m.Name, bottom,
				m.Thickness/units.UM, m.SheetResistance/units.MOhmSq, m.Conductivity())
		}
	}
	if vias := s.Vias(); len(vias) > 0 {
		fmt.Printf("\n%-10s %-8s %-8s %10s %10s %8s\n", "Via", "bottom", "top", "R (Ohm)", "w (um)", "fill %")
		for _, v := range vias {
			fmt.Printf("%-10s %-8s %-8s %10g %10g %8.1f\n", v.Name, v.BottomMetal(), v.TopMetal(),
				v.Resistance, v.Width/units.UM, v.Fill()*100)
		}
	}
}

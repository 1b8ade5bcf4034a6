package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"stackup/internal/stack"
	"stackup/internal/version"
	"stackup/pkg/units"
)

// Sonnet date stamps. The header fields other than DAT carry two spaces
// between date and time.
const (
	sonnetDate       = "01/02/2006 15:04:05"
	sonnetDateDouble = "01/02/2006  15:04:05"
)

// WriteSonnetTechnology writes the stack as a Sonnet project technology
// file named filename + ".son". The stack is standardized first if needed.
func WriteSonnetTechnology(s *stack.Stack, filename string) error {
	f, err := os.Create(filename + ".son")
	if err != nil {
		return fmt.Errorf("write sonnet technology: %w", err)
	}
	if err := Sonnet(s, f, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Sonnet writes the Sonnet technology file to w, stamping the header with
// the given time.
func Sonnet(s *stack.Stack, w io.Writer, now time.Time) error {
	if !s.IsStandard() {
		if err := s.Standardize(); err != nil {
			return err
		}
	}
	lines, err := sonnetLines(s, now)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// sonnetLines emits the header, a metal property table assigning a
// sequential index to every metal and via, and the top-to-bottom dielectric
// geometry list: air, oxides, bulk.
func sonnetLines(s *stack.Stack, now time.Time) ([]string, error) {
	const um = units.UM
	stamp := fmt.Sprintf("%s r%s", version.Name, version.Version)

	lines := []string{
		"FTYP SONPROJ 3 ! Sonnet Project File",
		"VER 11.56",
		"HEADER",
		"DAT " + now.Format(sonnetDate),
		fmt.Sprintf("BUILT_BY_CREATED %s %s", stamp, now.Format(sonnetDateDouble)),
		"BUILT_BY_SAVED " + stamp,
		"MDATE " + now.Format(sonnetDateDouble),
		"HDATE " + now.Format(sonnetDateDouble),
		"END HEADER",
		"DIM",
		"FREQ GHZ",
		"IND PH",
		"LNG UM",
		"ANG DEG",
		"CON /OH",
		"CAP PF",
		"RES OH",
		"END DIM",
		"GEO",
		`TMET "Lossless" 0 SUP 0 0 0 0`,
		`BMET "Lossless" 0 SUP 0 0 0 0`,
	}

	// Metal property table. Conductivities are written as integers, the
	// way Sonnet's own editor saves them.
	index := 0
	for _, m := range s.Metals() {
		index++
		lines = append(lines, fmt.Sprintf(`MET "%s" %d TMM %d 0 %g`,
			m.Name, index, int64(m.Conductivity()), m.Thickness/um))
	}
	for _, v := range s.Vias() {
		index++
		sigma, err := s.ViaConductivity(v)
		if err != nil {
			return nil, err
		}
		height, err := s.ViaHeight(v)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf(`MET "%s" %d NOR %d 0 %g`,
			v.Name, index, int64(sigma), height/um))
	}

	n := s.OxideCount()
	lines = append(lines, fmt.Sprintf("BOX %d 4064 4064 32 32 20 0", n+1))
	lines = append(lines, fmt.Sprintf(`      %g %g 1 %g 0 %g 0 "%s"`, 500.0, 1.0, 0.0, 0.0, "air"))
	for i := n - 1; i >= 0; i-- {
		ox := s.Oxide(i)
		thickness := ox.Thickness / um
		if thickness == 0 {
			// Sonnet rejects zero-thickness dielectric levels.
			thickness = 1e-9
		}
		lines = append(lines, fmt.Sprintf(`      %g %g 1 %g 0 0 0 "%s"`,
			thickness, ox.EpsilonRel, ox.LossTangent, "oxide"))
	}
	bulk := s.Bulk()
	lines = append(lines, fmt.Sprintf(`      %g %g 1 %g 0 %g 0 "%s"`,
		bulk.Thickness/um, bulk.EpsilonRel, bulk.LossTangent, 1.0/bulk.Resistivity, "bulk"))
	lines = append(lines, "NUM 0", "END GEO")
	return lines, nil
}

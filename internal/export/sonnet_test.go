package export

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"stackup/internal/stack"
)

func sonnetOutput(t *testing.T, s *stack.Stack) []string {
	t.Helper()
	var buf bytes.Buffer
	now := time.Date(2011, 3, 14, 15, 9, 26, 0, time.UTC)
	if err := Sonnet(s, &buf, now); err != nil {
		t.Fatalf("sonnet: %v", err)
	}
	if strings.HasSuffix(buf.String(), "\n") {
		t.Error("output ends with a newline")
	}
	return strings.Split(buf.String(), "\n")
}

func TestSonnetHeader(t *testing.T) {
	lines := sonnetOutput(t, exportStack(t))
	if lines[0] != "FTYP SONPROJ 3 ! Sonnet Project File" || lines[1] != "VER 11.56" {
		t.Fatalf("bad preamble: %q, %q", lines[0], lines[1])
	}
	if lines[3] != "DAT 03/14/2011 15:09:26" {
		t.Errorf("DAT line = %q", lines[3])
	}
	// Every stamp except DAT separates date and time with two spaces.
	for _, prefix := range []string{"BUILT_BY_CREATED ", "MDATE ", "HDATE "} {
		found := false
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				found = true
				if !strings.HasSuffix(l, "03/14/2011  15:09:26") {
					t.Errorf("%s stamp = %q", strings.TrimSpace(prefix), l)
				}
			}
		}
		if !found {
			t.Errorf("no %s line", strings.TrimSpace(prefix))
		}
	}
	for _, want := range []string{"END HEADER", "DIM", "LNG UM", "END DIM", "GEO", "NUM 0", "END GEO"} {
		found := false
		for _, l := range lines {
			if l == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing line %q", want)
		}
	}
	if lines[len(lines)-1] != "END GEO" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}

func TestSonnetMetalTable(t *testing.T) {
	lines := sonnetOutput(t, exportStack(t))
	var mets []string
	for _, l := range lines {
		if strings.HasPrefix(l, "MET ") {
			mets = append(mets, l)
		}
	}
	if len(mets) != 3 {
		t.Fatalf("got %d MET lines, want 3", len(mets))
	}
	// Metals in insertion order, then vias; indices are sequential.
	if !strings.HasPrefix(mets[0], `MET "M1" 1 TMM `) {
		t.Errorf("M1 line = %q", mets[0])
	}
	if !strings.HasPrefix(mets[1], `MET "M2" 2 TMM `) {
		t.Errorf("M2 line = %q", mets[1])
	}
	if !strings.HasPrefix(mets[2], `MET "V1" 3 NOR `) {
		t.Errorf("V1 line = %q", mets[2])
	}
	// Sheet 0.05 Ohm/sq at 1 um gives 2e7 S/m, written as an integer.
	for _, l := range mets[:2] {
		if sigma := floatField(t, l, 4); math.Abs(sigma-2e7) > 2 {
			t.Errorf("conductivity %g, want 2e7 in %q", sigma, l)
		}
		if th := floatField(t, l, 6); th != 1 {
			t.Errorf("thickness %g um, want 1 in %q", th, l)
		}
	}
	// Via height: M1 tops at 1 um, M2 starts at 2 um.
	if sigma := floatField(t, mets[2], 4); math.Abs(sigma-3.125e6) > 2 {
		t.Errorf("via conductivity %g, want 3.125e6", sigma)
	}
	if h := floatField(t, mets[2], 6); math.Abs(h-1) > 1e-9 {
		t.Errorf("via height %g um, want 1", h)
	}
}

func TestSonnetDielectricLevels(t *testing.T) {
	lines := sonnetOutput(t, exportStack(t))
	// One level per oxide plus air and bulk.
	boxIdx := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "BOX ") {
			boxIdx = i
			break
		}
	}
	if boxIdx < 0 {
		t.Fatal("no BOX line")
	}
	if lines[boxIdx] != "BOX 4 4064 4064 32 32 20 0" {
		t.Errorf("BOX line = %q", lines[boxIdx])
	}
	if lines[boxIdx+1] != `      500 1 1 0 0 0 0 "air"` {
		t.Errorf("air level = %q", lines[boxIdx+1])
	}
	var oxides int
	for _, l := range lines {
		if strings.HasSuffix(l, `"oxide"`) {
			oxides++
		}
	}
	if oxides != 3 {
		t.Errorf("%d oxide levels, want 3", oxides)
	}
	bulk := lines[len(lines)-3]
	if !strings.HasSuffix(bulk, `"bulk"`) {
		t.Fatalf("bulk level not last: %q", bulk)
	}
	if th := floatField(t, bulk, 0); math.Abs(th-100) > 1e-9 {
		t.Errorf("bulk thickness %g um, want 100", th)
	}
	if sigma := floatField(t, bulk, 5); math.Abs(sigma-5) > 1e-9 {
		t.Errorf("bulk conductivity %g, want 5", sigma)
	}
}

func TestSonnetZeroThicknessLevel(t *testing.T) {
	s := stack.New(stack.BulkLayer{Thickness: 100e-6, EpsilonRel: 11.9, Resistivity: 0.2})
	s.AddOxideLayerOnTop(stack.OxideLayer{Thickness: 1e-6, EpsilonRel: 4})
	s.AddOxideLayerOnTop(stack.OxideLayer{Thickness: 0, EpsilonRel: 4})
	lines := sonnetOutput(t, s)
	found := false
	for _, l := range lines {
		if strings.HasPrefix(l, "      1e-09 ") {
			found = true
		}
	}
	if !found {
		t.Error("zero-thickness level not substituted with 1e-09 um")
	}
}

// Package shader describes the ray-tracing shader kinds shaderbuild compiles
// and derives compile jobs from source file names.
package shader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputSuffix is appended to a source file name to name its SPIR-V output.
const OutputSuffix = ".spv"

// Kind is a recognized shader source kind.
type Kind uint8

const (
	RayGen Kind = iota + 1
	ClosestHit
	Miss
	Intersection
)

// kindInfo maps each kind to its short name and file suffix.
var kindInfo = map[Kind]struct {
	name   string
	suffix string
}{
	RayGen:       {"rgen", ".rgen"},
	ClosestHit:   {"rchit", ".rchit"},
	Miss:         {"rmiss", ".rmiss"},
	Intersection: {"rint", ".rint"},
}

// Kinds returns every recognized kind in a stable order.
func Kinds() []Kind {
	return []Kind{RayGen, ClosestHit, Miss, Intersection}
}

// String returns the short name of the kind (e.g. "rchit").
func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Suffix returns the file name suffix for the kind, including the dot.
func (k Kind) Suffix() string {
	return kindInfo[k].suffix
}

// ParseKind parses a kind from its short name ("rgen") or suffix (".rgen").
func ParseKind(s string) (Kind, error) {
	name := strings.TrimPrefix(strings.TrimSpace(s), ".")
	for _, k := range Kinds() {
		if kindInfo[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shader kind %q", s)
}

// KindOf returns the kind of a file by its name suffix.
// Matching is case sensitive.
func KindOf(filename string) (Kind, bool) {
	for _, k := range Kinds() {
		if strings.HasSuffix(filename, kindInfo[k].suffix) {
			return k, true
		}
	}
	return 0, false
}

// OutputName returns the compiled artifact name for a source file name.
func OutputName(filename string) string {
	return filename + OutputSuffix
}

// Job is a single source-to-SPIR-V compilation unit.
type Job struct {
	Source string
	Output string
	Kind   Kind
}

// NewJob builds the job for filename found in sourceDir.
func NewJob(sourceDir, outputDir, filename string, kind Kind) Job {
	return Job{
		Source: filepath.Join(sourceDir, filename),
		Output: filepath.Join(outputDir, OutputName(filename)),
		Kind:   kind,
	}
}

// String renders the job as "source -> output".
func (j Job) String() string {
	return j.Source + " -> " + j.Output
}

// Package fasta streams protein records from FASTA files. The header id is
// the first whitespace-separated token after '>'; the rest of the header is
// the description. Sequence lines are concatenated and upper-cased.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Protein is one FASTA record.
type Protein struct {
	ID          string
	Description string
	Sequence    string
}

// Parse reads every record from r.
func Parse(r io.Reader) ([]Protein, error) {
	var proteins []Protein
	err := ForEach(r, func(p Protein) error {
		proteins = append(proteins, p)
		return nil
	})
	return proteins, err
}

// ForEach streams records from r to visit, stopping on the first error.
func ForEach(r io.Reader, visit func(Protein) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var current *Protein
	var seq strings.Builder
	lineNum := 0

	flush := func() error {
		if current == nil {
			return nil
		}
		current.Sequence = seq.String()
		seq.Reset()
		p := *current
		current = nil
		return visit(p)
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return err
			}
			header := strings.TrimSpace(line[1:])
			if header == "" {
				return fmt.Errorf("line %d: empty FASTA header", lineNum)
			}
			id := header
			desc := ""
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				id = header[:i]
				desc = strings.TrimSpace(header[i+1:])
			}
			current = &Protein{ID: id, Description: desc}
			continue
		}
		if current == nil {
			return fmt.Errorf("line %d: sequence data before first header", lineNum)
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

package dsl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	markerChemicals = "~chemicals"
	markerReactions = "~reactions"
	markerAdditions = "~additions"
)

// Source holds the raw text of the three declaration blocks.
type Source struct {
	Chemicals string
	Reactions string
	Additions string
}

// ReadSource reads a sectioned simulation file. Sections start at a line
// holding only ~Chemicals, ~Reactions or ~Additions (case-insensitive).
// Text before the first marker is ignored and blank lines are dropped.
func ReadSource(r io.Reader) (Source, error) {
	sections := make(map[string][]string, 3)
	current := ""

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch marker := strings.ToLower(trimmed); marker {
		case markerChemicals, markerReactions, markerAdditions:
			if _, seen := sections[marker]; seen {
				return Source{}, fmt.Errorf("%w: %s", ErrDuplicateSection, trimmed)
			}
			sections[marker] = []string{}
			current = marker
			continue
		}

		if current == "" || trimmed == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	if err := sc.Err(); err != nil {
		return Source{}, fmt.Errorf("read simulation: %w", err)
	}

	if _, ok := sections[markerChemicals]; !ok {
		return Source{}, fmt.Errorf("%w: ~Chemicals", ErrMissingSection)
	}

	return Source{
		Chemicals: strings.Join(sections[markerChemicals], "\n"),
		Reactions: strings.Join(sections[markerReactions], "\n"),
		Additions: strings.Join(sections[markerAdditions], "\n"),
	}, nil
}

// WriteTo writes the source in sectioned form. All three markers are
// always written.
func (s Source) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	section := func(marker, body string) {
		buf.WriteString(marker)
		buf.WriteByte('\n')
		if body = strings.TrimSpace(body); body != "" {
			buf.WriteString(strings.ReplaceAll(body, "\r\n", "\n"))
			buf.WriteByte('\n')
		}
	}
	section("~Chemicals", s.Chemicals)
	section("~Reactions", s.Reactions)
	section("~Additions", s.Additions)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// String returns the sectioned form.
func (s Source) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

func LoadFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open simulation: %w", err)
	}
	defer f.Close()

	src, err := ReadSource(f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func SaveFile(path string, src Source) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	if _, err := src.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write simulation: %w", err)
	}
	return f.Close()
}

package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseStats describes what Parse saw in the input.
type ParseStats struct {
	Lines   int // physical lines read
	Records int // records returned
	Skipped int // blank, malformed, or header lines
}

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Parse reads one "name,class" record per line. A trailing carriage return
// is stripped so CRLF input parses the same as LF input. Fields past the
// second are ignored. Blank lines, lines without a comma, lines whose name
// or class normalizes to empty, and a leading "name,class" header are
// skipped. Only read errors are returned.
func Parse(r io.Reader) ([]Record, ParseStats, error) {
	var (
		out   []Record
		stats ParseStats
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		stats.Lines++
		rec, ok := parseLine(strings.TrimSuffix(sc.Text(), "\r"))
		if !ok || (stats.Lines == 1 && isHeader(rec)) {
			stats.Skipped++
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read records: %w", err)
	}
	stats.Records = len(out)
	return out, stats, nil
}

func parseLine(line string) (Record, bool) {
	if strings.TrimSpace(line) == "" {
		return Record{}, false
	}
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return Record{}, false
	}
	rec := NewRecord(fields[0], fields[1])
	if rec.Name == "" || rec.Class == "" {
		return Record{}, false
	}
	return rec, true
}

func isHeader(r Record) bool {
	return r.Name == "name" && r.Class == "class"
}

// LoadFile opens path and parses it with Parse.
func LoadFile(path string) ([]Record, ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	recs, stats, err := Parse(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return recs, stats, nil
}

package repository

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"dslf/internal/domain/models"

	"go.uber.org/multierr"
)

const (
	fieldCount    = 3
	maxLineSize   = 1 << 20
	byteOrderMark = "\ufeff"
)

var headerFields = [fieldCount]string{"url", "target", "status"}

// Parse reads a configuration and returns its entries in file order.
// On failure the returned error combines every *ConfigError found (see Errors) and no entries are
// returned.
func Parse(r io.Reader) ([]models.RouteEntry, error) {
	var (
		entries []models.RouteEntry
		lines   []int
		errs    error
		seenRow bool
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		first := !seenRow
		seenRow = true

		fields, err := splitRow(line)
		if err != nil {
			errs = multierr.Append(errs, &ConfigError{Kind: MalformedRow, Line: lineNo, Value: line, Detail: err.Error()})
			continue
		}
		if first && isHeader(fields) {
			continue
		}
		if len(fields) != fieldCount {
			errs = multierr.Append(errs, &ConfigError{
				Kind:   MalformedRow,
				Line:   lineNo,
				Value:  line,
				Detail: "expected " + strconv.Itoa(fieldCount) + " fields, got " + strconv.Itoa(len(fields)),
			})
			continue
		}

		entry, err := parseRow(lineNo, fields)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		entries = append(entries, entry)
		lines = append(lines, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	errs = multierr.Append(errs, findDuplicates(entries, lines))
	if errs != nil {
		return nil, errs
	}
	return entries, nil
}

// CheckEntry validates a single entry as if it had been read from the given line.
// Paths are matched against the escaped request path, so a path must be written the way a client
// sends it: percent-encoded, without a trailing slash, query or fragment.
func CheckEntry(line int, e models.RouteEntry) error {
	var errs error
	switch {
	case e.Path == "" || !strings.HasPrefix(e.Path, "/"):
		errs = multierr.Append(errs, &ConfigError{Kind: InvalidPath, Line: line, Value: e.Path})
	case e.Path == HealthPath:
		errs = multierr.Append(errs, &ConfigError{Kind: ReservedPath, Line: line, Value: e.Path})
	default:
		if detail := unreachablePath(e.Path); detail != "" {
			errs = multierr.Append(errs, &ConfigError{Kind: InvalidPath, Line: line, Value: e.Path, Detail: detail})
		}
	}
	switch {
	case e.Target != strings.TrimSpace(e.Target):
		errs = multierr.Append(errs, &ConfigError{Kind: InvalidTarget, Line: line, Value: e.Target, Detail: "surrounding whitespace"})
	case !isAbsoluteURL(e.Target):
		errs = multierr.Append(errs, &ConfigError{Kind: InvalidTarget, Line: line, Value: e.Target})
	}
	return errs
}

// unreachablePath explains why no request path can equal p, or returns "".
func unreachablePath(p string) string {
	if p != strings.TrimSpace(p) {
		return "surrounding whitespace"
	}
	if p != "/" && strings.HasSuffix(p, "/") {
		return "trailing slash is stripped before lookup"
	}
	if strings.ContainsAny(p, "?#") {
		return "query and fragment are not part of the path"
	}
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return "invalid percent-encoding"
	}
	u := url.URL{Path: unescaped, RawPath: p}
	if escaped := u.EscapedPath(); escaped != p {
		return fmt.Sprintf("not percent-encoded, use %q", escaped)
	}
	return ""
}

func parseRow(line int, fields []string) (models.RouteEntry, error) {
	entry := models.RouteEntry{Path: fields[0], Target: fields[1]}
	errs := CheckEntry(line, entry)

	status, ok := models.ParseRedirectKind(fields[2])
	if !ok {
		errs = multierr.Append(errs, &ConfigError{Kind: InvalidStatus, Line: line, Value: fields[2]})
	}
	entry.Status = status

	return entry, errs
}

func splitRow(line string) ([]string, error) {
	rd := csv.NewReader(strings.NewReader(line))
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rec, err := rd.Read()
	if err != nil {
		return nil, err
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec, nil
}

func isHeader(fields []string) bool {
	if len(fields) != fieldCount {
		return false
	}
	for i, f := range fields {
		if !strings.EqualFold(f, headerFields[i]) {
			return false
		}
	}
	return true
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func findDuplicates(entries []models.RouteEntry, lines []int) error {
	var errs error
	first := make(map[string]int, len(entries))
	for i, e := range entries {
		if at, ok := first[e.Path]; ok {
			errs = multierr.Append(errs, &ConfigError{Kind: DuplicatePath, Line: lines[i], FirstLine: at, Value: e.Path})
			continue
		}
		first[e.Path] = lines[i]
	}
	return errs
}

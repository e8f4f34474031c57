package repository

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"dslf/internal/domain/models"
)

// Serialize writes entries as a configuration with a header row. Fields are quoted when needed,
// so targets containing commas survive a Parse round trip.
func Serialize(w io.Writer, entries []models.RouteEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerFields[:]); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Path, e.Target, strconv.Itoa(e.Status.LegacyCode())}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Marshal returns the serialized configuration.
func Marshal(entries []models.RouteEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

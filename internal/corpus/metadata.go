package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Hearing types accepted by HearingIDs.
const (
	TypeAll  = "all"
	TypeBill = "bill"
)

const (
	columnID   = "Høringsnr"
	columnType = "Høringstype"
	billType   = "Lovforslag"
)

// Hearing is one row of the corpus metadata file.
type Hearing struct {
	ID   int
	Type string
}

// LoadMetadata reads metadata.csv. The first column is a row index and is
// ignored; the hearing number and type are located by header name.
func LoadMetadata(path string) ([]Hearing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

func ReadMetadata(r io.Reader) ([]Hearing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata header: %w", err)
	}
	idCol, typeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case columnID:
			idCol = i
		case columnType:
			typeCol = i
		}
	}
	if idCol < 0 || typeCol < 0 {
		return nil, fmt.Errorf("metadata needs %q and %q columns", columnID, columnType)
	}

	var hearings []Hearing
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		if idCol >= len(rec) || typeCol >= len(rec) {
			return nil, fmt.Errorf("metadata line %d: too few fields", line)
		}
		id, err := parseHearingNumber(rec[idCol])
		if err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		hearings = append(hearings, Hearing{ID: id, Type: strings.TrimSpace(rec[typeCol])})
	}
	return hearings, nil
}

// parseHearingNumber accepts "1234" and the "1234.0" form written by
// dataframe exports.
func parseHearingNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid hearing number %q", s)
	}
	return int(f), nil
}

// HearingIDs selects the ids of the given type: "bill" keeps hearings on
// bills (Lovforslag), "all" keeps every hearing.
func HearingIDs(hearings []Hearing, hearingType string) ([]int, error) {
	ids := []int{}
	switch hearingType {
	case TypeAll:
		for _, h := range hearings {
			ids = append(ids, h.ID)
		}
	case TypeBill:
		for _, h := range hearings {
			if h.Type == billType {
				ids = append(ids, h.ID)
			}
		}
	default:
		return nil, fmt.Errorf("invalid hearing type %q", hearingType)
	}
	return ids, nil
}

// Stem is the base name of the output files for a hearing type.
func Stem(hearingType string) string {
	return hearingType + "_hearings"
}

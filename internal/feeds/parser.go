package feeds

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ctedash/internal/normalize"
	"ctedash/pkg/contracts/domain"
)

// Column layout of the shipment export. The sheet is hand-maintained, so
// the positions are fixed by convention, not by header inspection.
const (
	colCteID          = 0
	colCteIssueDate   = 2
	colCteSender      = 3
	colCteRecipient   = 4
	colCteSLADeadline = 5
	colCteSLAStatus   = 6
	colCteCollection  = 7
	colCteDelivery    = 8
	colCteProof       = 9
	colCteManifest    = 10
	colCteValue       = 11
)

// Credential is one row of the access export. Passwords travel in clear
// text in the sheet; this is an operational gate, not a security boundary.
type Credential struct {
	Username string
	Password string
	Unit     string
}

// Calendar is the parsed period-calendar export: the externally maintained
// day counts driving the projection, the period reference date and the
// holiday list.
type Calendar struct {
	FixedDays domain.FixedDays
	RefDate   time.Time
	Holidays  []time.Time
}

// readAll decodes a CSV payload tolerantly: ragged rows are allowed, quotes
// are lazy and a UTF-8 BOM on the first cell is stripped.
func readAll(payload []byte) ([][]string, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(payload))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseCtes parses the shipment export. The first row is the header. Rows
// whose issue date does not parse, or that name neither a collection nor a
// delivery unit, are dropped: they cannot be attributed to any branch.
func ParseCtes(payload []byte) ([]domain.Cte, error) {
	rows, err := readAll(payload)
	if err != nil {
		return nil, fmt.Errorf("shipments: %w", err)
	}

	ctes := make([]domain.Cte, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		issueDate, ok := normalize.ParseDate(cell(row, colCteIssueDate))
		if !ok {
			continue
		}
		collection := normalize.UnitName(cell(row, colCteCollection))
		delivery := normalize.UnitName(cell(row, colCteDelivery))
		if collection == "" && delivery == "" {
			continue
		}

		c := domain.Cte{
			ID:             cell(row, colCteID),
			IssueDate:      issueDate,
			SLAStatus:      cell(row, colCteSLAStatus),
			CollectionUnit: collection,
			DeliveryUnit:   delivery,
			DeliveryProof:  cell(row, colCteProof),
			ManifestStatus: cell(row, colCteManifest),
			Value:          normalize.ParseCurrency(cell(row, colCteValue)),
			Sender:         cell(row, colCteSender),
			Recipient:      cell(row, colCteRecipient),
		}
		if deadline, ok := normalize.ParseDate(cell(row, colCteSLADeadline)); ok {
			c.SLADeadline = deadline
		}
		ctes = append(ctes, c)
	}
	return ctes, nil
}

// ParseTargets parses the revenue target export: unit name in the first
// column, monthly target in the second. Rows without a unit name are
// skipped.
func ParseTargets(payload []byte) ([]domain.UnitTarget, error) {
	rows, err := readAll(payload)
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}

	targets := make([]domain.UnitTarget, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		unit := normalize.UnitName(cell(row, 0))
		if unit == "" {
			continue
		}
		targets = append(targets, domain.UnitTarget{
			Unit:   unit,
			Target: normalize.ParseCurrency(cell(row, 1)),
		})
	}
	return targets, nil
}

// ParseCalendar parses the period-calendar export. The header row carries
// the period's total and elapsed working-day counts in columns 6 and 7; the
// first data row carries the reference date in column 4; subsequent rows
// list holidays in column 2.
func ParseCalendar(payload []byte) (Calendar, error) {
	rows, err := readAll(payload)
	if err != nil {
		return Calendar{}, fmt.Errorf("calendar: %w", err)
	}

	var cal Calendar
	for i, row := range rows {
		if i == 0 {
			cal.FixedDays.Total = parseIntCell(cell(row, 6))
			cal.FixedDays.Elapsed = parseIntCell(cell(row, 7))
			continue
		}
		if i == 1 {
			if ref, ok := normalize.ParseDate(cell(row, 4)); ok {
				cal.RefDate = ref
			}
		}
		if holiday, ok := normalize.ParseDate(cell(row, 2)); ok {
			cal.Holidays = append(cal.Holidays, holiday)
		}
	}
	return cal, nil
}

// ParseCredentials parses the access export: username, password and the
// optional home unit. A row without both a username and a password is
// skipped.
func ParseCredentials(payload []byte) ([]Credential, error) {
	rows, err := readAll(payload)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}

	creds := make([]Credential, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		username := cell(row, 0)
		password := cell(row, 1)
		if username == "" || password == "" {
			continue
		}
		creds = append(creds, Credential{
			Username: username,
			Password: password,
			Unit:     normalize.UnitName(cell(row, 2)),
		})
	}
	return creds, nil
}

func parseIntCell(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

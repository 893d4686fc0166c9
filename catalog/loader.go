package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadWarning records a row that could not be fully interpreted. The row is
// still kept in the catalog (with an empty ability list, or default values
// for the field named in Reason) rather than rejected, per the spec's
// graceful-degradation Non-goal.
type LoadWarning struct {
	Row    int
	Name   string
	Reason string
}

// LoadOptions controls CSV interpretation.
type LoadOptions struct {
	// SkipStarterSets excludes rows whose Set_Name marks a starter/quick-start
	// product, on by default per spec §6.
	SkipStarterSets bool
}

// DefaultLoadOptions returns the spec's default loading behavior.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{SkipStarterSets: true}
}

var starterSetNames = map[string]bool{
	"The First Chapter - Starter Deck": true,
	"Quick Start Set":                  true,
	"Starter Deck":                     true,
}

// expected column order per spec §6.
var expectedHeader = []string{
	"Name", "Unique_ID", "Cost", "Inkable", "Strength", "Willpower", "Lore",
	"Type", "Color", "Keywords", "Set_Name", "Date_Added", "Abilities",
}

// LoadCSV parses the tabular card catalog schema described in spec §6 and
// returns a ready-to-use Catalog. Rows with malformed ability JSON or an
// unrecognized Type are kept (with degraded fields) rather than rejected; a
// LoadWarning is appended for each such row. Only an unreadable header, a
// header missing one of Name/Unique_ID/Cost/Type, or a CSV syntax error
// returns an error; short rows are read with their missing fields empty.
func LoadCSV(r io.Reader, opts LoadOptions) (*Catalog, []LoadWarning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, want := range []string{"Name", "Unique_ID", "Cost", "Type"} {
		if _, ok := colIdx[want]; !ok {
			return nil, nil, fmt.Errorf("catalog header missing required column %q", want)
		}
	}

	var defs []*CardDef
	var warnings []LoadWarning
	nextID := CardID(0)

	rowNum := 1
	for {
		rowNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading catalog row %d: %w", rowNum, err)
		}

		get := func(col string) string {
			idx, ok := colIdx[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		setName := get("Set_Name")
		if opts.SkipStarterSets && starterSetNames[setName] {
			continue
		}

		name := get("Name")
		cost, _ := strconv.Atoi(get("Cost"))
		strength, _ := strconv.Atoi(get("Strength"))
		willpower, _ := strconv.Atoi(get("Willpower"))
		lore, _ := strconv.Atoi(get("Lore"))
		inkable := strings.EqualFold(get("Inkable"), "true") || get("Inkable") == "1"

		def := &CardDef{
			ID:            nextID,
			Name:          name,
			UniqueID:      get("Unique_ID"),
			Cost:          cost,
			Inkable:       inkable,
			Strength:      strength,
			Willpower:     willpower,
			Lore:          lore,
			Type:          CardType(get("Type")),
			Colors:        parseColors(get("Color")),
			Keywords:      make(map[Keyword]bool),
			KeywordValues: make(map[Keyword]int),
			SetName:       setName,
			DateAdded:     get("Date_Added"),
		}

		parseKeywords(get("Keywords"), def)

		abilitiesRaw := get("Abilities")
		if abilitiesRaw != "" {
			abilities, perr := parseAbilities(abilitiesRaw)
			if perr != nil {
				warnings = append(warnings, LoadWarning{
					Row: rowNum, Name: name,
					Reason: fmt.Sprintf("unparsable abilities JSON, treated as no abilities: %v", perr),
				})
			} else {
				def.Abilities = abilities
			}
		}

		if def.Type != TypeCharacter && def.Type != TypeAction && def.Type != TypeSong &&
			def.Type != TypeItem && def.Type != TypeLocation {
			warnings = append(warnings, LoadWarning{
				Row: rowNum, Name: name,
				Reason: fmt.Sprintf("unrecognized card type %q, kept with no zone-specific behavior", def.Type),
			})
		}

		defs = append(defs, def)
		nextID++
	}

	return NewCatalog(defs), warnings, nil
}

func parseColors(raw string) []Color {
	if raw == "" {
		return nil
	}
	var colors []Color
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			colors = append(colors, Color(part))
		}
	}
	return colors
}

func parseKeywords(raw string, def *CardDef) {
	if raw == "" {
		return
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		kw := Keyword(fields[0])
		def.Keywords[kw] = true
		if len(fields) > 1 {
			v := strings.TrimPrefix(fields[len(fields)-1], "+")
			if n, err := strconv.Atoi(v); err == nil {
				def.KeywordValues[kw] = n
			}
		}
	}
}

func parseAbilities(raw string) ([]Ability, error) {
	var rows []map[string]any
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, err
	}
	abilities := make([]Ability, 0, len(rows))
	for _, row := range rows {
		a := Ability{
			Name:     str(row["name"]),
			Trigger:  str(row["trigger"]),
			Kind:     str(row["kind"]),
			Selector: str(row["selector"]),
			Keyword:  str(row["keyword"]),
		}
		if v, ok := row["value"].(float64); ok {
			a.Value = int(v)
		}
		abilities = append(abilities, a)
	}
	return abilities, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

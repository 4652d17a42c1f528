package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// SaveCSVExport writes records as CSV to a new file labelled label and
// returns its path. records is any JSON-encodable slice of flat objects; the
// header comes from the field names of the first record.
func (m *Manager) SaveCSVExport(records any, label string) (string, error) {
	if err := m.ensureDir(); err != nil {
		return "", err
	}
	data, err := ToCSV(records)
	if err != nil {
		return "", fmt.Errorf("csv export %s: %w", label, err)
	}
	path := filepath.Join(m.dir, "devtrack_"+label+"_"+m.now().Format(stampLayout)+".csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write csv file: %w", err)
	}
	m.logger.Info("csv exported", "path", path, "label", label)
	return path, nil
}

// ToCSV renders records as comma separated lines joined by "\n". Strings
// containing a comma are quoted with inner quotes doubled, null renders
// empty and any other value renders as its JSON text. An empty slice
// renders as no bytes at all.
func ToCSV(records any) ([]byte, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	rows := gjson.ParseBytes(raw).Array()
	if len(rows) == 0 {
		return []byte{}, nil
	}

	lines := make([]string, 0, len(rows)+1)
	var header []string
	rows[0].ForEach(func(key, _ gjson.Result) bool {
		header = append(header, key.String())
		return true
	})
	lines = append(lines, strings.Join(header, ","))

	for _, row := range rows {
		var fields []string
		row.ForEach(func(_, value gjson.Result) bool {
			fields = append(fields, csvField(value))
			return true
		})
		lines = append(lines, strings.Join(fields, ","))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func csvField(v gjson.Result) string {
	var s string
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		s = v.String()
	default:
		s = v.Raw
	}
	if strings.Contains(s, ",") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

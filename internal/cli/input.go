// internal/cli/input.go

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"creatorpulse/internal/domain/insight"
)

const unknownPlatform = "unknown"

// Platform names recognised in export file names
var filenamePlatforms = []string{"youtube", "instagram", "tiktok", "facebook"}

// Input is the engine input read by the CLI
type Input struct {
	Platforms map[string][]insight.RawRecord `json:"platforms"`
}

// ReadStdin decodes an {"platforms": {...}} document. Blank input yields no
// platforms.
func ReadStdin(r io.Reader) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("error reading stdin: %w", err)
	}

	input := Input{Platforms: map[string][]insight.RawRecord{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return input, nil
	}

	if err := json.Unmarshal(data, &input); err != nil {
		return Input{}, fmt.Errorf("error decoding stdin: %w", err)
	}
	if input.Platforms == nil {
		input.Platforms = map[string][]insight.RawRecord{}
	}
	return input, nil
}

// ReadFiles merges platform export files. A file may hold {platform, items},
// a list of records or a single record. Files that cannot be read are
// reported to errOut and skipped.
func ReadFiles(paths []string, errOut io.Writer) Input {
	input := Input{Platforms: map[string][]insight.RawRecord{}}

	for _, path := range paths {
		platform, records, err := readExport(path)
		if err != nil {
			reportError(errOut, fmt.Sprintf("Failed to read %s: %v", path, err))
			continue
		}
		input.Platforms[platform] = append(input.Platforms[platform], records...)
	}

	return input
}

func readExport(path string) (string, []insight.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, err
	}

	switch v := doc.(type) {
	case map[string]interface{}:
		platform, hasPlatform := v["platform"].(string)
		items, hasItems := v["items"].([]interface{})
		if hasPlatform && hasItems {
			return platform, toRecords(items), nil
		}
		return unknownPlatform, []insight.RawRecord{v}, nil

	case []interface{}:
		records := toRecords(v)
		return inferPlatform(path, records), records, nil

	default:
		return "", nil, fmt.Errorf("unsupported JSON document %T", doc)
	}
}

// inferPlatform takes the first record's platform field, then a known
// platform name in the file name
func inferPlatform(path string, records []insight.RawRecord) string {
	for _, rec := range records {
		if p, ok := rec["platform"].(string); ok && strings.TrimSpace(p) != "" {
			return strings.ToLower(strings.TrimSpace(p))
		}
	}

	name := strings.ToLower(filepath.Base(path))
	for _, candidate := range filenamePlatforms {
		if strings.Contains(name, candidate) {
			return candidate
		}
	}

	return unknownPlatform
}

func toRecords(items []interface{}) []insight.RawRecord {
	records := make([]insight.RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, insight.RawRecord(m))
		}
	}
	return records
}

func reportError(w io.Writer, message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	fmt.Fprintln(w, string(data))
}

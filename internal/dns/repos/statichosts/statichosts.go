// Package statichosts loads caller-supplied static resource records from
// YAML, JSON, or TOML files: root-hint tables, private-network overrides, or
// pinned answers a deployment wants the resolver to serve without ever
// touching the network. Records loaded this way never expire.
package statichosts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rdns/internal/dns/common/rrdata"
	"github.com/haukened/rdns/internal/dns/common/utils"
	"github.com/haukened/rdns/internal/dns/domain"
)

// LoadDirectory walks dir, loading every supported file (.yaml/.yml/.json/.toml)
// and returning a flat slice of static records. Files unrelated to this format
// (unsupported extension) are skipped rather than erroring, so a hints
// directory can carry a README alongside its data files.
func LoadDirectory(dir string, defaultTTL time.Duration) ([]domain.ResourceRecord, error) {
	var all []domain.ResourceRecord

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		records, err := LoadFile(path, defaultTTL)
		if err != nil {
			return fmt.Errorf("error parsing static record file %s: %w", path, err)
		}
		all = append(all, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// LoadFile loads and parses a single static-record file. The file's top-level
// keys are owner names (or "@" for apex, expanded against the file's "apex" key);
// each owner maps record-type names to a value or list of values.
func LoadFile(path string, defaultTTL time.Duration) ([]domain.ResourceRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load static record file %s: %w", path, err)
	}

	apex := k.String("apex")
	if apex == "" {
		return nil, fmt.Errorf("static record file %s missing 'apex'", path)
	}
	apex = utils.CanonicalDNSName(apex)

	var records []domain.ResourceRecord
	for name, raw := range k.Raw() {
		if name == "apex" {
			continue
		}
		rawMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fqdn := utils.CanonicalDNSName(expandName(name, apex))
		for rrType, val := range rawMap {
			values := toStringValues(val)
			if len(values) == 0 {
				continue
			}
			recs, err := buildResourceRecords(fqdn, rrType, values, defaultTTL)
			if err != nil {
				return nil, fmt.Errorf("invalid record in %s: %w", path, err)
			}
			records = append(records, recs...)
		}
	}
	return records, nil
}

// expandName returns the fully qualified domain name for a label, expanding
// '@' to apex and appending apex if the label is not already absolute.
func expandName(label, apex string) string {
	if label == "@" {
		return apex
	}
	if strings.HasSuffix(label, ".") {
		return label
	}
	return label + "." + apex
}

// toStringValues normalizes a raw koanf value (string or []any of strings)
// into a slice of non-empty strings.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

// buildResourceRecords creates one static ResourceRecord per value.
func buildResourceRecords(fqdn, rrType string, values []string, defaultTTL time.Duration) ([]domain.ResourceRecord, error) {
	rType := domain.RRTypeFromString(rrType)
	var records []domain.ResourceRecord
	for _, s := range values {
		data, err := rrdata.Encode(rType, s)
		if err != nil {
			return nil, err
		}
		rr, err := domain.NewStaticResourceRecord(
			fqdn,
			rType,
			domain.RRClassIN,
			uint32(defaultTTL.Seconds()),
			data,
			s,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}

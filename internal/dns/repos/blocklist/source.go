package blocklist

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	logpkg "github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/repos/blocklist/parsers"
)

// LoadSources reads every rule file under dir plus every URL, dispatching
// each to ParseHostsFile or ParsePlainList by name, and merges the results
// into one rule set ready for Repository.UpdateAll. A file or URL named
// "*.hosts" or ending in "hosts" is treated as /etc/hosts-style; everything
// else is treated as a plain one-domain-per-line list.
func LoadSources(dir string, urls []string, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
	var rules []domain.BlockRule

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("blocklist: reading directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("blocklist: opening %s: %w", path, err)
			}
			parsed, err := parseSource(f, path, looksLikeHostsFile(e.Name()), logger, now)
			f.Close()
			if err != nil {
				return nil, err
			}
			rules = append(rules, parsed...)
		}
	}

	for _, u := range urls {
		resp, err := http.Get(u)
		if err != nil {
			return nil, fmt.Errorf("blocklist: fetching %s: %w", u, err)
		}
		parsed, err := parseSource(resp.Body, u, looksLikeHostsFile(u), logger, now)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	}

	return rules, nil
}

func looksLikeHostsFile(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	return strings.HasSuffix(base, "hosts") || strings.HasSuffix(base, ".hosts")
}

func parseSource(r io.Reader, source string, hostsFormat bool, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
	if hostsFormat {
		return parsers.ParseHostsFile(r, source, logger, now)
	}
	return parsers.ParsePlainList(r, source, logger, now)
}

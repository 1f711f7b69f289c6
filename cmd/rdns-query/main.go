package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/config"
	"github.com/haukened/rdns/internal/dns/domain"
	proxygw "github.com/haukened/rdns/internal/dns/gateways/proxy"
	"github.com/haukened/rdns/internal/dns/gateways/transport"
	"github.com/haukened/rdns/internal/dns/repos/blocklist"
	"github.com/haukened/rdns/internal/dns/repos/blocklist/bolt"
	blocklistbloom "github.com/haukened/rdns/internal/dns/repos/blocklist/bloom"
	blocklistlru "github.com/haukened/rdns/internal/dns/repos/blocklist/lru"
	"github.com/haukened/rdns/internal/dns/repos/dnscache"
	"github.com/haukened/rdns/internal/dns/repos/statichosts"
	"github.com/haukened/rdns/internal/dns/services/resolver"
)

const (
	version         = "0.1.0-dev"
	appName         = "rdns-query"
	staticRecordTTL = 300 * time.Second
)

// Application holds the wired-up components a single lookup runs against.
type Application struct {
	cfg      *config.AppConfig
	resolver *resolver.IterativeResolver
	logger   log.Logger
}

func main() {
	name, qtype, servers, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: %s [@server] name [type]\n", appName)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetLogger()

	logger.Info(map[string]any{
		"version": version,
		"env":     cfg.Env,
		"name":    name,
		"type":    qtype,
	}, "starting lookup")

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Fatal(map[string]any{"error": err}, "failed to build application")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	q, err := domain.NewQuestion(name, qtype, domain.RRClassIN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid question: %v\n", err)
		os.Exit(2)
	}

	if len(servers) == 0 {
		servers = upstreamServers(cfg, logger)
	}

	resp, err := app.resolver.Resolve(ctx, q, servers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolution failed: %v\n", err)
		os.Exit(1)
	}

	printResponse(os.Stdout, q, resp)
}

// upstreamServers parses the configured upstream address list, in ip:port
// form, into resolver-ready NameServer values. Any entry this resolver
// doesn't understand is dropped with a warning rather than aborting the
// whole run. An empty result falls back to the built-in root server table.
func upstreamServers(cfg *config.AppConfig, logger log.Logger) []domain.NameServer {
	var servers []domain.NameServer
	for _, addr := range cfg.Resolver.Upstream {
		ns, err := domain.ParseNameServer(addr)
		if err != nil {
			logger.Warn(map[string]any{"server": addr, "error": err}, "skipping unparseable upstream server")
			continue
		}
		servers = append(servers, ns)
	}
	return servers
}

// buildApplication constructs all components and wires them into a single
// resolver instance.
func buildApplication(cfg *config.AppConfig, logger log.Logger) (*Application, error) {
	cache, err := dnscache.New(int(cfg.Resolver.Cache.Size))
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	bl, err := buildBlocklist(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build blocklist: %w", err)
	}

	statics, err := loadStaticRecords(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load static hosts: %w", err)
	}
	seedStaticAnswers(cache, statics, logger)

	dispatcher, dial, err := buildProxy(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure proxy: %w", err)
	}

	transports := func(proto domain.Protocol) (resolver.Transport, error) {
		return transport.New(proto, transport.Options{
			Timeout: 5 * time.Second,
			Dial:    dial,
			Logger:  logger,
		})
	}

	r := resolver.NewIterativeResolver(resolver.Options{
		Transports: transports,
		Cache:      cache,
		Blocklist:  bl,
		Proxy:      dispatcher,
		Logger:     logger,
		MaxHops:    cfg.Resolver.MaxRecursion,
	})

	return &Application{cfg: cfg, resolver: r, logger: logger}, nil
}

// buildBlocklist wires the persistent store, Bloom short-circuit, and
// decision cache into a Repository, then loads and applies every configured
// rule source. A directory that doesn't exist yet leaves the blocklist
// empty rather than failing the whole lookup.
func buildBlocklist(cfg *config.AppConfig, logger log.Logger) (resolver.Blocklist, error) {
	if cfg.Blocklist.Directory == "" && len(cfg.Blocklist.URLs) == 0 {
		return &blocklist.NoopRepository{}, nil
	}

	store, err := bolt.New(cfg.Blocklist.DB)
	if err != nil {
		return nil, fmt.Errorf("opening blocklist store: %w", err)
	}

	cache, err := blocklistlru.New(int(cfg.Blocklist.Cache.Size))
	if err != nil {
		return nil, fmt.Errorf("creating blocklist decision cache: %w", err)
	}

	repo := blocklist.NewRepository(store, cache, blocklistbloom.NewFactory(), 0.01)

	rules, err := blocklist.LoadSources(cfg.Blocklist.Directory, cfg.Blocklist.URLs, logger, time.Now())
	if err != nil {
		logger.Warn(map[string]any{"error": err}, "blocklist sources unavailable, continuing unblocked")
		return repo, nil
	}

	if err := repo.UpdateAll(rules, 1, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("loading blocklist rules: %w", err)
	}

	logger.Info(map[string]any{"rules": len(rules)}, "blocklist loaded")
	return repo, nil
}

// loadStaticRecords loads operator-pinned records (root hints, private
// overrides) from the configured directory. A missing directory is not an
// error: most deployments rely solely on the built-in root server table.
func loadStaticRecords(cfg *config.AppConfig, logger log.Logger) ([]domain.ResourceRecord, error) {
	if cfg.Resolver.ZoneDirectory == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.Resolver.ZoneDirectory); os.IsNotExist(err) {
		return nil, nil
	}
	records, err := statichosts.LoadDirectory(cfg.Resolver.ZoneDirectory, staticRecordTTL)
	if err != nil {
		return nil, err
	}
	logger.Info(map[string]any{"records": len(records), "dir": cfg.Resolver.ZoneDirectory}, "static hosts loaded")
	return records, nil
}

// seedStaticAnswers primes the response cache with every static record as a
// synthesized, non-expiring answer, so a matching question is served
// straight from the cache without ever touching a transport.
func seedStaticAnswers(cache *dnscache.Cache, records []domain.ResourceRecord, logger log.Logger) {
	byQuestion := make(map[string][]domain.ResourceRecord)
	for _, rr := range records {
		key := rr.Name + "|" + rr.Type.String()
		byQuestion[key] = append(byQuestion[key], rr)
	}
	for _, rrs := range byQuestion {
		q, err := domain.NewQuestion(rrs[0].Name, rrs[0].Type, rrs[0].Class)
		if err != nil {
			continue
		}
		resp, err := domain.NewResponse(0, domain.RCodeNoError, q, rrs, nil, nil)
		if err != nil {
			logger.Warn(map[string]any{"name": rrs[0].Name, "error": err}, "skipping invalid static record")
			continue
		}
		if err := cache.CacheResponse(resp); err != nil {
			logger.Warn(map[string]any{"name": rrs[0].Name, "error": err}, "failed to seed static answer")
		}
	}
}

// buildProxy returns a Dispatcher and matching transport.DialFunc for
// cfg.Resolver.ProxyAddr. Both are nil when no proxy is configured, so the
// resolver dials the network directly.
func buildProxy(cfg *config.AppConfig) (proxygw.Dispatcher, transport.DialFunc, error) {
	if cfg.Resolver.ProxyAddr == "" {
		return nil, nil, nil
	}
	dispatcher, err := proxygw.NewSOCKS5Dispatcher(cfg.Resolver.ProxyAddr, &proxy.Auth{})
	if err != nil {
		return nil, nil, err
	}
	return dispatcher, dispatcher.Connect, nil
}

// parseArgs implements a small dig-style command line: an optional leading
// "@server" argument, the question name, and an optional record type
// (defaulting to A).
func parseArgs(args []string) (name string, qtype domain.RRType, servers []domain.NameServer, err error) {
	qtype = domain.RRTypeA
	var rest []string
	for _, a := range args {
		if strings.HasPrefix(a, "@") {
			ns, perr := domain.ParseNameServer(a[1:])
			if perr != nil {
				return "", 0, nil, fmt.Errorf("invalid server %q: %w", a, perr)
			}
			servers = append(servers, ns)
			continue
		}
		rest = append(rest, a)
	}
	switch len(rest) {
	case 0:
		return "", 0, nil, fmt.Errorf("missing question name")
	case 1:
		name = rest[0]
	case 2:
		name = rest[0]
		qtype = domain.RRTypeFromString(strings.ToUpper(rest[1]))
		if !qtype.IsValid() {
			return "", 0, nil, fmt.Errorf("unsupported record type %q", rest[1])
		}
	default:
		return "", 0, nil, fmt.Errorf("too many arguments")
	}
	return name, qtype, servers, nil
}

// printResponse renders resp in a dig-style summary: status line followed by
// one line per answer record.
func printResponse(w *os.File, q domain.Question, resp domain.Message) {
	fmt.Fprintf(w, "; <<>> %s <<>> %s %s\n", appName, q.Name, q.Type)
	fmt.Fprintf(w, ";; status: %s, answers: %d\n", resp.Header.RCode, len(resp.Answer))
	if len(resp.Answer) == 0 {
		fmt.Fprintln(w, ";; no answer section")
	}
	for _, rr := range resp.Answer {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", rr.Name, rr.TTL(), rr.Class, rr.Type, rr.Text)
	}
}

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// CacheConfig sizes an LRU cache shared by the resolver's response cache and
// the blocklist's decision cache.
type CacheConfig struct {
	Size uint `koanf:"size" validate:"required,gte=1"`
}

// LoggingConfig controls the structured logger's verbosity.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// SinkholeConfig holds the sinkhole address(es) and TTL that go with
// BlocklistConfig.Strategy "sinkhole". They are loaded and validated only;
// no component rewrites a blocked query's answer with them.
type SinkholeConfig struct {
	Target []string `koanf:"target" validate:"required,dive,ip"`
	TTL    uint32   `koanf:"ttl" validate:"required,gte=1"`
}

// ResolverConfig configures the iterative resolver: which upstream servers
// seed a query and how deep referral chasing may go.
type ResolverConfig struct {
	// ZoneDirectory holds static/authoritative zone or hints files, loaded at startup.
	ZoneDirectory string `koanf:"zone_directory" validate:"required"`

	// Upstream is the default server list a client-style lookup starts from,
	// in ip:port form. Empty means "start from the root servers".
	Upstream []string `koanf:"upstream" validate:"required,dive,ip_port"`

	// MaxRecursion bounds referral-following hops for one resolution.
	MaxRecursion int `koanf:"max_recursion" validate:"required,gte=1,lte=64"`

	// Port is loaded and validated as a port number; nothing in this module
	// opens a listener on it.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// Cache sizes the response cache consulted before any upstream query.
	Cache CacheConfig `koanf:"cache"`

	// ProxyAddr is an optional SOCKS5 proxy ("host:port") that all upstream
	// exchanges are routed through. Empty dials the network directly.
	ProxyAddr string `koanf:"proxy_addr"`
}

// BlocklistConfig configures the optional domain-name policy check consulted
// before a query ever leaves the resolver.
type BlocklistConfig struct {
	// Directory holds locally-managed blocklist rule files.
	Directory string `koanf:"directory" validate:"required"`

	// URLs are remote blocklist sources fetched and merged with Directory's rules.
	URLs []string `koanf:"urls" validate:"dive,url"`

	// Cache sizes the decision cache in front of the persistent rule store.
	Cache CacheConfig `koanf:"cache"`

	// DB is the path to the persistent rule store.
	DB string `koanf:"db" validate:"required"`

	// Strategy is one of "refused", "nxdomain", or "sinkhole". It is loaded and
	// validated only: the resolver does not read it and always answers a
	// blocked query with REFUSED.
	Strategy string `koanf:"strategy" validate:"required,oneof=refused nxdomain sinkhole"`

	// Sinkhole is required when Strategy is "sinkhole" and ignored otherwise.
	Sinkhole *SinkholeConfig `koanf:"sinkhole" validate:"required_if=Strategy sinkhole"`
}

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log       LoggingConfig   `koanf:"log"`
	Resolver  ResolverConfig  `koanf:"resolver"`
	Blocklist BlocklistConfig `koanf:"blocklist"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings
// for the resolver: cache sizes, environment, log level, port,
// zone directory, upstream servers, and blocklist behavior.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LoggingConfig{Level: "info"},
	Resolver: ResolverConfig{
		ZoneDirectory: "/etc/rr-dns/zone.d/",
		Upstream:      []string{"1.1.1.1:53", "1.0.0.1:53"},
		MaxRecursion:  8,
		Port:          53,
		Cache:         CacheConfig{Size: 1000},
		ProxyAddr:     "",
	},
	Blocklist: BlocklistConfig{
		Directory: "/etc/rr-dns/blocklist.d/",
		URLs:      []string{},
		Cache:     CacheConfig{Size: 1000},
		DB:        "/var/lib/rr-dns/blocklist.db",
		Strategy:  "refused",
		Sinkhole:  nil,
	},
}

// validIPPort validates whether the provided field value is a valid IP address and port combination.
// It expects the value to be in the format "IP:Port". The function returns true if the IP address
// is valid and both the IP and port are non-empty; otherwise, it returns false.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envKeyMap translates the short environment variable names this service
// accepts into the dotted koanf keys of the nested AppConfig they populate.
// Env vars not listed here are ignored rather than guessed at.
var envKeyMap = map[string]string{
	"DNS_ENV":                       "env",
	"DNS_LOG_LEVEL":                 "log.level",
	"DNS_RESOLVER_ZONES":            "resolver.zone_directory",
	"DNS_RESOLVER_UPSTREAM":         "resolver.upstream",
	"DNS_RESOLVER_DEPTH":            "resolver.max_recursion",
	"DNS_RESOLVER_PORT":             "resolver.port",
	"DNS_RESOLVER_CACHE_SIZE":       "resolver.cache.size",
	"DNS_RESOLVER_PROXY":            "resolver.proxy_addr",
	"DNS_BLOCKLIST_DIR":             "blocklist.directory",
	"DNS_BLOCKLIST_URLS":            "blocklist.urls",
	"DNS_BLOCKLIST_CACHE_SIZE":      "blocklist.cache.size",
	"DNS_BLOCKLIST_DB":              "blocklist.db",
	"DNS_BLOCKLIST_STRATEGY":        "blocklist.strategy",
	"DNS_BLOCKLIST_SINKHOLE_TARGET": "blocklist.sinkhole.target",
	"DNS_BLOCKLIST_SINKHOLE_TTL":    "blocklist.sinkhole.ttl",
}

// envLoader loads environment variables with the prefix "DNS_", translating
// each recognized name to its dotted config key via envKeyMap and splitting
// space- or comma-separated values into a list. It can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			mapped, ok := envKeyMap[key]
			if !ok {
				return "", nil
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return mapped, value
			}
			if strings.ContainsAny(value, " ,") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return mapped, parts
			}
			return mapped, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers a custom validation function "ip_port" with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

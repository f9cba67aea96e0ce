package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultProbeTimeoutSeconds = 1
	DefaultProbeRepeat         = 2
	DefaultWorkers             = 12
	DefaultSSHTimeout          = 10 * time.Second
	DefaultSSHPort             = 22
	DefaultWindowDays          = 35
	DefaultRunInterval         = 24 * time.Hour
	DefaultHTTPPort            = 8080
)

// Default artifact paths, matching the layout the history was accumulated
// under: everything next to the binary's working directory.
const (
	DefaultSitesFile   = "sites.csv"
	DefaultHistoryFile = "alldata.csv"
	DefaultResultsFile = "results.csv"
	DefaultExportFile  = "csvdata.js"
)

// Config is the top-level configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Daemon  DaemonConfig  `yaml:"daemon"`
}

// MonitorConfig holds everything one measurement run needs.
type MonitorConfig struct {
	// Points is the ordered list of observation points latency is measured
	// from. Its length is the expected sample count per site: a history row
	// gains exactly len(Points) day columns per run, one per point, in this
	// order.
	Points []Point `yaml:"points"`

	// Probe holds per-probe transport and command settings.
	Probe ProbeConfig `yaml:"probe"`

	// Files holds the input and artifact paths.
	Files FilesConfig `yaml:"files"`

	// WindowDays is the number of trailing day columns the window export
	// carries per row.
	WindowDays int `yaml:"window_days"`

	// SkipSites lists decommissioned site names. They stay in the history
	// table but are omitted from the window export.
	SkipSites []string `yaml:"skip_sites"`

	// KeepStaleAverage keeps a row's lifetime average untouched on days
	// the site is entirely unreachable, instead of overwriting it with the
	// unreachable marker.
	KeepStaleAverage bool `yaml:"keep_stale_average"`

	// Auth configures the SSH credentials used against every observation
	// point. An empty username or unresolvable password falls back to an
	// interactive prompt when stdin is a terminal.
	Auth AuthConfig `yaml:"auth"`
}

// Point is one fixed observation point: a router reached over SSH that
// sources pings toward the target hosts.
type Point struct {
	// ID is a unique, human-readable identifier. It names the point's
	// column in the run output artifact and binds sites.csv entries to
	// their point.
	ID string `yaml:"id"`

	// Host is the address the SSH session is opened to.
	Host string `yaml:"host"`

	// Source is the source address the ping command is issued with.
	// Defaults to Host.
	Source string `yaml:"source"`
}

// ProbeConfig holds per-probe transport and command settings.
type ProbeConfig struct {
	// TimeoutSeconds is the in-command ping timeout passed to the router.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Repeat is the in-command echo request count.
	Repeat int `yaml:"repeat"`

	// Workers caps how many hosts are probed concurrently.
	Workers int `yaml:"workers"`

	// SSHTimeout bounds the dial of each transient SSH session.
	SSHTimeout time.Duration `yaml:"ssh_timeout"`

	// SSHPort is the SSH port on every observation point.
	SSHPort int `yaml:"ssh_port"`

	// KnownHostsFile enables strict host key checking against the given
	// OpenSSH known_hosts file. Empty accepts any host key, which is what
	// the fleet's previous tooling did.
	KnownHostsFile string `yaml:"known_hosts_file"`
}

// FilesConfig holds the input and artifact paths.
type FilesConfig struct {
	// Sites is the site metadata table: ip, sitename, sitecode, tier and
	// an optional point column.
	Sites string `yaml:"sites"`

	// History is the persistent wide table rewritten every run.
	History string `yaml:"history"`

	// Results is this run's snapshot artifact.
	Results string `yaml:"results"`

	// Export is the script-embeddable window export.
	Export string `yaml:"export"`

	// MetricsTextfile, when set, receives a Prometheus text-format dump of
	// the run's metrics after each run. Meant for a node_exporter textfile
	// collector; daemon mode also serves /metrics directly.
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// AuthConfig specifies the SSH credentials.
type AuthConfig struct {
	// Username is the literal login name (safe to store in config).
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the
	// password value.
	PasswordEnv string `yaml:"password_env"`
}

// Password returns the password resolved from the environment.
// Returns empty string if PasswordEnv is unset or the variable is not found.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// DaemonConfig holds resident-mode settings. When disabled, the process
// performs one run and exits.
type DaemonConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval is how often the pipeline re-runs. The first run happens
	// immediately on start, so restarting the daemon mid-day appends a new
	// column pair just like re-running the old cron job did.
	Interval time.Duration `yaml:"interval"`

	// HTTPPort is the port the artifact endpoints, WebSocket hub and
	// /metrics listen on.
	HTTPPort int `yaml:"http_port"`
}

// PointIDs returns the configured point identifiers in order.
func (m MonitorConfig) PointIDs() []string {
	ids := make([]string, len(m.Points))
	for i, p := range m.Points {
		ids[i] = p.ID
	}
	return ids
}

// SkipSet returns the decommissioned site names as a lookup set.
func (m MonitorConfig) SkipSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.SkipSites))
	for _, s := range m.SkipSites {
		set[s] = struct{}{}
	}
	return set
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Probe: ProbeConfig{
				TimeoutSeconds: DefaultProbeTimeoutSeconds,
				Repeat:         DefaultProbeRepeat,
				Workers:        DefaultWorkers,
				SSHTimeout:     DefaultSSHTimeout,
				SSHPort:        DefaultSSHPort,
			},
			Files: FilesConfig{
				Sites:   DefaultSitesFile,
				History: DefaultHistoryFile,
				Results: DefaultResultsFile,
				Export:  DefaultExportFile,
			},
			WindowDays: DefaultWindowDays,
		},
		Daemon: DaemonConfig{
			Interval: DefaultRunInterval,
			HTTPPort: DefaultHTTPPort,
		},
	}
}

// normalize fills derivable fields in place before validation.
func normalize(cfg *Config) {
	for i := range cfg.Monitor.Points {
		if cfg.Monitor.Points[i].Source == "" {
			cfg.Monitor.Points[i].Source = cfg.Monitor.Points[i].Host
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := &cfg.Monitor
	if len(m.Points) == 0 {
		return fmt.Errorf("monitor.points: at least one observation point is required")
	}
	seen := make(map[string]struct{}, len(m.Points))
	for i, p := range m.Points {
		if p.ID == "" {
			return fmt.Errorf("monitor.points[%d]: id is required", i)
		}
		if p.Host == "" {
			return fmt.Errorf("monitor.points[%d] %q: host is required", i, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("monitor.points: duplicate id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if m.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("monitor.probe.timeout_seconds must be positive")
	}
	if m.Probe.Repeat <= 0 {
		return fmt.Errorf("monitor.probe.repeat must be positive")
	}
	if m.Probe.Workers <= 0 {
		return fmt.Errorf("monitor.probe.workers must be positive")
	}
	if m.Probe.SSHTimeout <= 0 {
		return fmt.Errorf("monitor.probe.ssh_timeout must be positive")
	}
	if m.Probe.SSHPort <= 0 || m.Probe.SSHPort > 65535 {
		return fmt.Errorf("monitor.probe.ssh_port must be a valid port")
	}
	if m.WindowDays <= 0 {
		return fmt.Errorf("monitor.window_days must be positive")
	}
	if m.Files.Sites == "" || m.Files.History == "" || m.Files.Results == "" || m.Files.Export == "" {
		return fmt.Errorf("monitor.files: sites, history, results and export paths are all required")
	}
	if cfg.Daemon.Enabled {
		if cfg.Daemon.Interval <= 0 {
			return fmt.Errorf("daemon.interval must be positive")
		}
		if cfg.Daemon.HTTPPort <= 0 || cfg.Daemon.HTTPPort > 65535 {
			return fmt.Errorf("daemon.http_port must be a valid port")
		}
	}
	return nil
}

// Package config loads and watches the pingtimes configuration file.
//
// Top-level types:
//   - Config{Monitor, Daemon}: the full tree parsed from YAML
//   - MonitorConfig: observation points, probe settings, artifact paths,
//     window width, decommissioned sites, SSH auth
//   - Point: id, host, source; the ordered point list defines how many day
//     columns each history row gains per run
//   - AuthConfig: literal username plus password_env; Password() resolves
//     from the environment
//   - DaemonConfig: resident-mode interval and HTTP port
//
// Load(path) reads the YAML file, applies defaults (12 workers, 35-day
// window, 1s/2-repeat ping, 10s SSH dial, 24h daemon interval), normalizes
// point sources, then validates required fields.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It survives the rename-then-create
// pattern used by atomic-save editors by re-adding the watch after a rename
// event.
package config

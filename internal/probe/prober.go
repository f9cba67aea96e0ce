package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/cadencejames/Get-PingTimes/internal/config"
	"github.com/cadencejames/Get-PingTimes/internal/latency"
)

// Prober measures latency from one observation point to a target host.
// A non-nil error means the observation point itself could not be reached or
// commanded; an unreachable target is a value, not an error.
type Prober interface {
	Probe(ctx context.Context, point config.Point, target string) (latency.Value, error)
}

// SSHProber runs the IOS ping command on an observation-point router over a
// transient SSH session, one connection per probe.
type SSHProber struct {
	cfg    config.ProbeConfig
	client *ssh.ClientConfig
}

// NewSSHProber builds a prober authenticating with the given credentials.
// When cfg.KnownHostsFile is set, host keys are verified against it;
// otherwise any host key is accepted, which is how the routers these probes
// target are typically managed.
func NewSSHProber(cfg config.ProbeConfig, username, password string) (*SSHProber, error) {
	hostKeys := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via known_hosts_file
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known hosts %q: %w", cfg.KnownHostsFile, err)
		}
		hostKeys = cb
	}
	return &SSHProber{
		cfg: cfg,
		client: &ssh.ClientConfig{
			User: username,
			Auth: []ssh.AuthMethod{
				ssh.Password(password),
				// IOS devices frequently advertise keyboard-interactive
				// instead of plain password auth.
				ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
					answers := make([]string, len(questions))
					for i := range answers {
						answers[i] = password
					}
					return answers, nil
				}),
			},
			HostKeyCallback: hostKeys,
			Timeout:         cfg.SSHTimeout,
		},
	}, nil
}

// Probe dials the point's router, issues one ping command and parses the
// transcript. The dial honors ctx; the ping itself is bounded by the
// in-command timeout and repeat count.
func (p *SSHProber) Probe(ctx context.Context, point config.Point, target string) (latency.Value, error) {
	addr := net.JoinHostPort(point.Host, strconv.Itoa(p.cfg.SSHPort))

	dialer := &net.Dialer{Timeout: p.client.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, p.client)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session on %s: %w", addr, err)
	}
	defer session.Close()

	cmd := fmt.Sprintf("ping %s source %s timeout %d repeat %d",
		target, point.Source, p.cfg.TimeoutSeconds, p.cfg.Repeat)
	out, err := session.CombinedOutput(cmd)
	if err != nil {
		return "", fmt.Errorf("run %q on %s: %w", cmd, addr, err)
	}
	return ParseTranscript(string(out)), nil
}

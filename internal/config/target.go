package config

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

var (
	dialTimeout  = 250 * time.Millisecond
	probeTimeout = 800 * time.Millisecond
)

// Reachable reports whether base accepts a TCP connection and answers an
// HTTP GET on its root. Any HTTP status counts; 5xx is left to navigation.
func Reachable(ctx context.Context, base string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// candidates lists the local addresses tried when autodetecting, in order,
// without the initial URL.
func candidates(initial string) []string {
	ports := []string{"8080", "4173", "5173", "3000"}
	if u, err := url.Parse(initial); err == nil && u.Port() != "" {
		ports = append([]string{u.Port()}, ports...)
	}

	var list []string
	for _, host := range []string{"127.0.0.1", "localhost"} {
		for _, p := range ports {
			list = append(list, "http://"+host+":"+p)
		}
	}

	seen := map[string]struct{}{strings.TrimRight(initial, "/"): {}}
	uniq := list[:0]
	for _, c := range list {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return uniq
}

// ResolveBaseURL returns initial if it is reachable. Otherwise it tries the
// usual local development addresses and returns the first that answers,
// falling back to initial when none does.
func ResolveBaseURL(ctx context.Context, initial string, logger *log.Logger) string {
	start := time.Now()
	if Reachable(ctx, initial) {
		return initial
	}
	tried := []string{initial}
	for _, c := range candidates(initial) {
		tried = append(tried, c)
		if Reachable(ctx, c) {
			logger.Printf("Autodetect switched base URL %s -> %s (%s; order=%v)", initial, c, time.Since(start).Round(time.Millisecond), tried)
			return c
		}
	}
	logger.Printf("Autodetect kept unreachable base URL %s (tried=%v in %s)", initial, tried, time.Since(start).Round(time.Millisecond))
	return initial
}

// WaitForTarget polls base until it is reachable or timeout elapses. A
// target that never answers is an environment error.
func WaitForTarget(ctx context.Context, base string, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	res := wait.Poll(ctx, timeout, interval, func(ctx context.Context) (bool, error) {
		return Reachable(ctx, base), nil
	})
	if res.Outcome != wait.Satisfied {
		return &browser.EnvironmentError{
			Op:  "target",
			Err: fmt.Errorf("%s not reachable after %s (%d probes)", base, res.Elapsed.Round(time.Millisecond), res.Polls),
		}
	}
	return nil
}

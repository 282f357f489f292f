package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
)

func TestConnLimiter(t *testing.T) {
	tests := []struct {
		name     string
		maxIP    int
		maxTotal int
		ips      []string
		want     []bool
	}{
		{"per ip", 2, 100, []string{"a", "a", "a", "b"}, []bool{true, true, false, true}},
		{"total", 10, 3, []string{"a", "b", "c", "d"}, []bool{true, true, true, false}},
		{"unlimited", 0, 0, []string{"a", "a", "a", "a", "a"}, []bool{true, true, true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewConnLimiter(config.ServerConfig{MaxPerIP: tt.maxIP, MaxConnections: tt.maxTotal})
			for i, ip := range tt.ips {
				if got := l.TryAcquire(ip); got != tt.want[i] {
					t.Errorf("acquire %d (%s) = %v, want %v", i, ip, got, tt.want[i])
				}
			}
		})
	}
}

func TestConnLimiterRelease(t *testing.T) {
	l := NewConnLimiter(config.ServerConfig{MaxPerIP: 1, MaxConnections: 10})
	l.TryAcquire("a")
	l.TryAcquire("b")
	if total, ips := l.Stats(); total != 2 || ips != 2 {
		t.Errorf("Stats() = %d, %d", total, ips)
	}

	l.Release("a")
	if !l.TryAcquire("a") {
		t.Error("slot not freed by Release")
	}
	l.Release("a")
	l.Release("a") // extra releases are ignored
	if total, ips := l.Stats(); total != 1 || ips != 1 {
		t.Errorf("Stats() after releases = %d, %d", total, ips)
	}
}

func TestConnLimiterUnknownReleaseKeepsCap(t *testing.T) {
	l := NewConnLimiter(config.ServerConfig{MaxConnections: 2})
	l.TryAcquire("a")
	l.TryAcquire("b")
	l.Release("c")
	if l.TryAcquire("d") {
		t.Error("release of an unknown ip freed a global slot")
	}
	if total, ips := l.Stats(); total != 2 || ips != 2 {
		t.Errorf("Stats() = %d, %d, want 2, 2", total, ips)
	}
}

func TestExtractIP(t *testing.T) {
	tests := map[string]string{
		"192.168.1.1:12345": "192.168.1.1",
		"[::1]:12345":       "::1",
		"localhost:4000":    "localhost",
		"192.168.1.1":       "192.168.1.1",
	}
	for in, want := range tests {
		if got := extractIP(in); got != want {
			t.Errorf("extractIP(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name, xff, xri, remote, want string
	}{
		{"forwarded", "203.0.113.50", "", "10.0.0.1:1", "203.0.113.50"},
		{"forwarded chain", "203.0.113.50, 70.41.3.18", "", "10.0.0.1:1", "203.0.113.50"},
		{"real ip", "", "198.51.100.25", "10.0.0.1:1", "198.51.100.25"},
		{"forwarded wins", "203.0.113.50", "198.51.100.25", "10.0.0.1:1", "203.0.113.50"},
		{"socket", "", "", "192.168.1.100:54321", "192.168.1.100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{RemoteAddr: tt.remote, Header: make(http.Header)}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getRealIP(req); got != tt.want {
				t.Errorf("getRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

// newTestLimiter returns a limiter on a clock the test advances by hand.
func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) (*LoginRateLimiter, *time.Time) {
	t.Helper()
	rl := NewLoginRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLoginRateLimiterLocks(t *testing.T) {
	rl, _ := newTestLimiter(t, config.RateLimitConfig{MaxAttempts: 3, LockoutSeconds: 1, MaxLockoutSeconds: 10})
	ip := "192.168.1.1"

	for i := 0; i < 2; i++ {
		if locked, _ := rl.RecordFailure(ip); locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	if rl.Failures(ip) != 2 {
		t.Errorf("Failures() = %d", rl.Failures(ip))
	}
	locked, d := rl.RecordFailure(ip)
	if !locked || d != time.Second {
		t.Errorf("third failure = %v, %v", locked, d)
	}
	if locked, _ := rl.IsLocked(ip); !locked {
		t.Error("IP should be locked")
	}
	if locked, _ := rl.IsLocked("10.0.0.1"); locked {
		t.Error("other IPs must not be locked")
	}
}

func TestLoginRateLimiterSuccessClears(t *testing.T) {
	rl, _ := newTestLimiter(t, config.RateLimitConfig{MaxAttempts: 3, LockoutSeconds: 1, MaxLockoutSeconds: 10})
	ip := "192.168.1.1"
	rl.RecordFailure(ip)
	rl.RecordFailure(ip)
	rl.RecordSuccess(ip)

	if rl.Failures(ip) != 0 {
		t.Error("success did not clear failures")
	}
	if locked, _ := rl.RecordFailure(ip); locked {
		t.Error("first failure after success locked")
	}
}

func TestLoginRateLimiterBackoff(t *testing.T) {
	rl, now := newTestLimiter(t, config.RateLimitConfig{MaxAttempts: 1, LockoutSeconds: 1, MaxLockoutSeconds: 5})
	ip := "192.168.1.1"

	for _, want := range []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second} {
		locked, d := rl.RecordFailure(ip)
		if !locked || d != want {
			t.Fatalf("lockout = %v, %v, want %v", locked, d, want)
		}
		// Failing again while locked reports the time left.
		if locked, left := rl.RecordFailure(ip); !locked || left != d {
			t.Errorf("retry while locked = %v, %v", locked, left)
		}
		*now = now.Add(d)
		if locked, _ := rl.IsLocked(ip); locked {
			t.Error("lockout did not expire")
		}
	}
}

func TestLoginRateLimiterSweep(t *testing.T) {
	rl, now := newTestLimiter(t, config.RateLimitConfig{MaxAttempts: 1, LockoutSeconds: 1, MaxLockoutSeconds: 1})
	rl.RecordFailure("a")
	rl.RecordFailure("b")
	rl.RecordSuccess("b")

	*now = now.Add(time.Hour)
	rl.sweep()
	rl.mu.Lock()
	n := len(rl.attempts)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("%d entries left after sweep", n)
	}
}

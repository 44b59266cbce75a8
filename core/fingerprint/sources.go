package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Source is one observable device/environment signal. Read failures are never
// fatal: the derivation substitutes Sentinel for that slot and moves on.
type Source struct {
	Name     string
	Sentinel string
	Read     func() (string, error)
}

// StaticSource returns a source with a fixed value. Used for signals that
// cannot fail and for fakes in tests.
func StaticSource(name, value string) Source {
	return Source{
		Name:     name,
		Sentinel: "unknown",
		Read:     func() (string, error) { return value, nil },
	}
}

// IPSource wraps the backend IP lookup as the final signal slot. A failed
// lookup substitutes ip_error; a reply without an address substitutes no_ip.
// One-off network errors and permanently blocked environments look identical
// on purpose: both collapse to the same sentinel, with no retry.
func IPSource(lookup func(ctx context.Context) (string, error)) Source {
	return Source{
		Name:     "client_ip",
		Sentinel: "ip_error",
		Read: func() (string, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			ip, err := lookup(ctx)
			if err != nil {
				return "", err
			}
			if ip == "" {
				return "no_ip", nil
			}
			return ip, nil
		},
	}
}

// HostSources probes the signals a headless client can observe, in the same
// slot order a browser client uses: screen geometry, timezone, locale,
// platform, CPU count, memory, user agent, canvas digest, GPU strings.
// Slots with no host analog fail their probe and digest as sentinels.
func HostSources() []Source {
	return []Source{
		screenSource(),
		timezoneSource(),
		localeSource(),
		platformSource(),
		cpuSource(),
		memorySource(),
		userAgentSource(),
		canvasSource(),
		gpuSource(),
	}
}

// screenSource reports terminal geometry as WxHxdepth.
func screenSource() Source {
	return Source{
		Name:     "screen",
		Sentinel: "unknown",
		Read: func() (string, error) {
			cols := os.Getenv("COLUMNS")
			lines := os.Getenv("LINES")
			if cols == "" || lines == "" {
				return "", errors.New("terminal geometry not exported")
			}
			depth := 8
			if os.Getenv("COLORTERM") == "truecolor" {
				depth = 24
			}
			return fmt.Sprintf("%sx%sx%d", cols, lines, depth), nil
		},
	}
}

func timezoneSource() Source {
	return Source{
		Name:     "timezone",
		Sentinel: "unknown",
		Read: func() (string, error) {
			if tz := os.Getenv("TZ"); tz != "" {
				return tz, nil
			}
			if raw, err := os.ReadFile("/etc/timezone"); err == nil {
				if name := strings.TrimSpace(string(raw)); name != "" {
					return name, nil
				}
			}
			name, _ := time.Now().Zone()
			if name == "" {
				return "", errors.New("timezone not determinable")
			}
			return name, nil
		},
	}
}

func localeSource() Source {
	return Source{
		Name:     "locale",
		Sentinel: "unknown",
		Read: func() (string, error) {
			for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
				if v := os.Getenv(key); v != "" {
					return v, nil
				}
			}
			return "", errors.New("locale not set")
		},
	}
}

func platformSource() Source {
	return StaticSource("platform", runtime.GOOS+"/"+runtime.GOARCH)
}

func cpuSource() Source {
	return StaticSource("cpu_count", strconv.Itoa(runtime.NumCPU()))
}

// memorySource estimates installed memory in whole GiB.
func memorySource() Source {
	return Source{
		Name:     "memory",
		Sentinel: "unknown",
		Read: func() (string, error) {
			raw, err := os.ReadFile("/proc/meminfo")
			if err != nil {
				return "", err
			}
			for _, line := range strings.Split(string(raw), "\n") {
				if !strings.HasPrefix(line, "MemTotal:") {
					continue
				}
				fields := strings.Fields(line)
				if len(fields) < 2 {
					break
				}
				kb, err := strconv.ParseInt(fields[1], 10, 64)
				if err != nil {
					break
				}
				gib := (kb + (1 << 20) - 1) / (1 << 20) // round up to whole GiB
				return strconv.FormatInt(gib, 10), nil
			}
			return "", errors.New("MemTotal not found")
		},
	}
}

func userAgentSource() Source {
	return StaticSource("user_agent",
		fmt.Sprintf("CalicoFM/1.0 (%s; %s)", runtime.GOOS, runtime.GOARCH))
}

// canvasSource has no host analog; a headless client always digests the
// sentinel for this slot.
func canvasSource() Source {
	return Source{
		Name:     "canvas",
		Sentinel: "canvas_error",
		Read: func() (string, error) {
			return "", errors.New("canvas rendering not available")
		},
	}
}

// gpuSource reports the GPU vendor/renderer pair as a single pipe-joined
// slot. No host analog on a headless client.
func gpuSource() Source {
	return Source{
		Name:     "gpu",
		Sentinel: "webgl_error",
		Read: func() (string, error) {
			return "", errors.New("gpu query not available")
		},
	}
}

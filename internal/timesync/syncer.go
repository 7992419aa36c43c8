package timesync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	apperrors "lampwright/internal/errors"
)

// Certificate issuance and TLS handshakes fail on hosts with a badly
// skewed clock, so the installer syncs time before touching certificates.

// HwClockSynced indicates the hardware clock was successfully synchronized.
const HwClockSynced = "synced"

// Options controls how Sync obtains and applies network time.
type Options struct {
	Sources []string
	Timeout time.Duration
	// SkipHardwareClock leaves the RTC untouched. Containers cannot
	// access it anyway.
	SkipHardwareClock bool
}

// Result captures details about the synchronization attempt.
type Result struct {
	Source      string
	NetworkTime time.Time
	HwClockInfo string
}

var defaultSources = []string{
	"https://cloudflare.com/",
	"https://time.cloudflare.com/",
	"https://www.google.com/",
}

// Sync derives the current time from the Date header of well-known HTTPS
// endpoints, sets the system clock, and optionally the hardware RTC.
func Sync(ctx context.Context, opts *Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sources := defaultSources
	timeout := 5 * time.Second
	skipHwClock := false
	if opts != nil {
		if len(opts.Sources) > 0 {
			sources = opts.Sources
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		skipHwClock = opts.SkipHardwareClock
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Time must come from the original source host.
			return http.ErrUseLastResponse
		},
	}

	var failures []string
	for _, source := range sources {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		networkTime, err := fetchNetworkTime(reqCtx, client, source)
		cancel()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", source, err))
			continue
		}

		if err := setSystemClock(networkTime); err != nil {
			return nil, err
		}

		result := &Result{Source: source, NetworkTime: networkTime}

		if skipHwClock {
			result.HwClockInfo = "skipped"
			return result, nil
		}

		info, err := syncHardwareClock()
		if err != nil {
			return nil, err
		}
		result.HwClockInfo = info
		return result, nil
	}

	return nil, newTimesyncError(apperrors.ErrCategoryNetwork, "timesync.Sync", "failed to fetch network time from any source", nil).
		WithField("failures", strings.Join(failures, "; "))
}

// fetchNetworkTime reads the Date header, preferring HEAD over GET.
func fetchNetworkTime(ctx context.Context, client *http.Client, source string) (time.Time, error) {
	doRequest := func(method string) (string, error) {
		req, err := http.NewRequestWithContext(ctx, method, source, nil)
		if err != nil {
			return "", fmt.Errorf("build %s request: %w", method, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("%s request: %w", method, err)
		}
		defer resp.Body.Close()

		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return "", fmt.Errorf("drain %s response: %w", method, err)
		}

		return resp.Header.Get("Date"), nil
	}

	dateHeader, err := doRequest(http.MethodHead)
	if err != nil {
		return time.Time{}, newTimesyncError(apperrors.ErrCategoryNetwork, "timesync.fetchNetworkTime", "failed to fetch time", err).
			WithField("source", source)
	}
	if dateHeader == "" {
		dateHeader, err = doRequest(http.MethodGet)
		if err != nil {
			return time.Time{}, newTimesyncError(apperrors.ErrCategoryNetwork, "timesync.fetchNetworkTime", "failed to fetch time", err).
				WithField("source", source)
		}
	}
	if dateHeader == "" {
		return time.Time{}, newTimesyncError(apperrors.ErrCategoryNetwork, "timesync.fetchNetworkTime", "no Date header from source", nil).
			WithField("source", source)
	}

	parsed, err := http.ParseTime(dateHeader)
	if err != nil {
		return time.Time{}, newTimesyncError(apperrors.ErrCategoryNetwork, "timesync.fetchNetworkTime", "invalid Date header", err).
			WithField("source", source).
			WithField("date_header", dateHeader)
	}

	return parsed.UTC(), nil
}

func setSystemClock(target time.Time) error {
	tv := unix.NsecToTimeval(target.UTC().UnixNano())
	if err := unix.Settimeofday(&tv); err != nil {
		return newTimesyncError(apperrors.ErrCategorySystem, "timesync.setSystemClock", "settimeofday failed", err)
	}
	return nil
}

func syncHardwareClock() (string, error) {
	if _, err := exec.LookPath("hwclock"); err != nil {
		return "hwclock command not available", nil
	}
	if !rtcDeviceExists() {
		return "no RTC device detected", nil
	}

	if err := exec.Command("hwclock", "--systohc").Run(); err != nil {
		return "", newTimesyncError(apperrors.ErrCategorySystem, "timesync.syncHardwareClock", "hwclock --systohc failed", err)
	}
	return HwClockSynced, nil
}

func rtcDeviceExists() bool {
	for _, path := range []string{"/dev/rtc", "/dev/rtc0"} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

func newTimesyncError(category apperrors.ErrorCategory, operation, message string, err error) *apperrors.AppError {
	code := apperrors.CodeSystemGeneric
	if category == apperrors.ErrCategoryNetwork {
		code = apperrors.CodeNetworkGeneric
	}

	return apperrors.New(code, category, message, err).
		WithModule("timesync").
		WithOperation(operation)
}

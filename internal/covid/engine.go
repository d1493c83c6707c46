// Package covid retrieves daily epidemic snapshots from the remote CSV
// source, caches them on disk and aggregates per-location statistics.
package covid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
	"github.com/kivanctezoren/sanalkiwobot/internal/models"
)

var (
	// ErrSourceUnavailable means every dated fetch attempt failed.
	ErrSourceUnavailable = errors.New("remote dataset source unavailable")
	// ErrCorruptDataset means a snapshot was retrieved but cannot be parsed.
	ErrCorruptDataset = errors.New("corrupt dataset snapshot")
)

// remoteDateLayout is the date format of the remote daily-report file names.
const remoteDateLayout = "01-02-2006"

// DisplayDateLayout is how dates are presented back to users.
const DisplayDateLayout = "02.01.2006"

// Service looks up aggregated statistics for a canonical location key.
type Service interface {
	Lookup(ctx context.Context, location string, at time.Time) (models.LookupResult, error)
}

// Engine implements Service with an on-disk snapshot cache and a bounded
// walk backward through the calendar when the requested day is missing.
type Engine struct {
	cfg    config.CovidConfig
	client *http.Client
	logger *logrus.Logger

	// fresh marks a domain as fetched within the freshness window; entry
	// expiry is the window itself.
	fresh *cache.Cache

	// mu serializes the check-or-fetch-then-write step on the snapshot dir.
	mu sync.Mutex
}

// NewEngine creates the fetch engine and its local snapshot directories.
func NewEngine(cfg config.CovidConfig, logger *logrus.Logger) (*Engine, error) {
	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "us_data")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	return &Engine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		fresh:  cache.New(cfg.FreshnessWindow, cfg.FreshnessWindow),
	}, nil
}

// domain returns the sub-source a location's rows live in. The US has its
// own report directory upstream and its own snapshot dir locally.
func (e *Engine) domain(location string) string {
	if location == "US" {
		return "us"
	}
	return "global"
}

func (e *Engine) snapshotPath(domain string, date time.Time) string {
	name := date.Format(remoteDateLayout) + ".csv"
	if domain == "us" {
		return filepath.Join(e.cfg.DataDir, "us_data", name)
	}
	return filepath.Join(e.cfg.DataDir, name)
}

func (e *Engine) remoteURL(domain string, date time.Time) string {
	base := e.cfg.BaseURL
	if domain == "us" {
		base = e.cfg.USBaseURL
	}
	return base + "/" + date.Format(remoteDateLayout) + ".csv"
}

// Lookup returns the aggregated stats for the location, walking back one
// calendar day per failed attempt. The result's Date is the day actually
// served, which may be earlier than requested.
func (e *Engine) Lookup(ctx context.Context, location string, at time.Time) (models.LookupResult, error) {
	domain := e.domain(location)

	path, date, err := e.ensureSnapshot(ctx, domain, at)
	if err != nil {
		return models.LookupResult{}, err
	}

	stats, err := e.aggregate(path, location)
	if err != nil {
		return models.LookupResult{}, err
	}

	e.logger.WithFields(logrus.Fields{
		"location":  location,
		"date":      date.Format(remoteDateLayout),
		"confirmed": stats.Confirmed,
		"active":    stats.Active,
		"deaths":    stats.Deaths,
		"recovered": stats.Recovered,
	}).Info("Aggregated location stats")

	return models.LookupResult{Location: location, Stats: stats, Date: date}, nil
}

// ensureSnapshot makes a local snapshot available for the domain, starting
// at the requested day and stepping backward on failure. Returns the
// snapshot path and the day it holds.
func (e *Engine) ensureSnapshot(ctx context.Context, domain string, at time.Time) (string, time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	date := at
	for try := 0; try < e.cfg.Attempts; try++ {
		date = at.AddDate(0, 0, -try)
		path := e.snapshotPath(domain, date)

		// Freshness short-circuit: a recent successful fetch for this domain
		// makes any existing snapshot authoritative, whichever day is tried.
		if _, fresh := e.fresh.Get(domain); fresh {
			if _, err := os.Stat(path); err == nil {
				e.logger.WithField("path", path).Debug("Serving snapshot within freshness window")
				return path, date, nil
			}
		}

		ok, err := e.fetch(ctx, e.remoteURL(domain, date), path)
		if err != nil {
			// A transport failure burns the attempt like a missing report
			// does; the next loop iteration tries the previous day.
			e.logger.WithError(err).WithField("date", date.Format(remoteDateLayout)).Warn(
				"Report fetch failed, trying the previous day")
			continue
		}
		if ok {
			e.fresh.SetDefault(domain, time.Now())
			return path, date, nil
		}

		e.logger.WithField("date", date.Format(remoteDateLayout)).Info(
			"No remote report for day, trying the previous day")
	}

	return "", time.Time{}, ErrSourceUnavailable
}

// fetch downloads one report. A non-2xx status is not an error, it just
// reports false so the caller can try an earlier day.
func (e *Engine) fetch(ctx context.Context, url, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return false, fmt.Errorf("failed to write snapshot: %w", err)
	}

	e.logger.WithField("url", url).Info("Retrieved remote report")
	return true, nil
}

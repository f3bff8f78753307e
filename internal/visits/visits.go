// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package visits records page visits with parsed user agent and country
// attribution. Recording is fire-and-forget and never blocks a request.
package visits

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/nesthub/nesthub-go/internal/geoip"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

const recordTimeout = 5 * time.Second

// Logger records visits against the remote store.
type Logger struct {
	remote remote.Service
	geo    *geoip.Lookup
}

// NewLogger creates a visit logger. geo may be disabled; country attribution
// is then omitted.
func NewLogger(svc remote.Service, geo *geoip.Lookup) *Logger {
	return &Logger{remote: svc, geo: geo}
}

// Record stores a visit for the request on a background goroutine. Failures
// are logged at debug level only; visit tracking must never affect visitors.
func (l *Logger) Record(r *http.Request) {
	if l.remote == nil {
		return
	}

	ua := useragent.Parse(r.UserAgent())
	v := model.Visit{
		Path:      r.URL.Path,
		Browser:   ua.Name,
		OS:        ua.OS,
		Device:    deviceType(ua),
		CreatedAt: time.Now(),
	}

	if l.geo != nil {
		v.Country = l.geo.LookupCountry(clientIP(r))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := l.remote.InsertVisit(ctx, v); err != nil {
			slog.Debug("recording visit failed", "path", v.Path, "error", err)
		}
	}()
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Desktop:
		return "desktop"
	default:
		return "other"
	}
}

// clientIP extracts the caller address, trusting chi's RealIP middleware to
// have already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

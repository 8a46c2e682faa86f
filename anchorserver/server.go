// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package anchorserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/internal/logger"
	"github.com/sage-x-project/anchor/internal/metrics"
	"github.com/sage-x-project/anchor/pathpolicy"
	"github.com/sage-x-project/anchor/storage"
)

// Server is the anchor HTTP server.
type Server struct {
	backend  storage.Backend
	anchor   account.Account
	policies []pathpolicy.Policy

	quotas        storage.QuotaLimits
	validators    map[string]Validator
	tagValidation TagValidation

	signedURLDefaultTTL time.Duration
	cors                CORSOrigin

	log logger.Logger
	mux *http.ServeMux
}

// New constructs a Server from cfg, applying defaults for any zero-value
// optional field.
func New(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	s := &Server{
		backend:             cfg.Backend,
		anchor:              cfg.AnchorAccount,
		policies:            cfg.PathPolicies,
		quotas:              cfg.Quotas,
		validators:          cfg.Validators,
		tagValidation:       cfg.TagValidation,
		signedURLDefaultTTL: cfg.SignedURLDefaultTTL,
		cors:                cfg.PublicCorsOrigin,
		log:                 cfg.Logger,
	}
	s.mux = s.buildMux()
	return s, nil
}

// Handler returns the http.Handler routing every anchor endpoint,
// instrumented with request metrics.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

func (s *Server) buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/object/{path...}", s.handlePut)
	mux.HandleFunc("GET /api/object/{path...}", s.handleGet)
	mux.HandleFunc("DELETE /api/object/{path...}", s.handleDelete)
	mux.HandleFunc("GET /api/metadata/{path...}", s.handleMetadata)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/quota", s.handleQuota)
	mux.HandleFunc("GET /api/public/{path...}", s.corsWrap(s.handlePublicGet))
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// instrument records per-route latency and status counters around every
// request, grounded in internal/metrics/server.go's promhttp wiring.
func (s *Server) instrument(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		route := routeLabel(r)
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		metrics.RequestsHandled.WithLabelValues(route, statusClass(rec.status)).Inc()
		s.log.Debug("request handled",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routeLabel(r *http.Request) string {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/object"):
		return "object"
	case strings.HasPrefix(r.URL.Path, "/api/metadata"):
		return "metadata"
	case r.URL.Path == "/api/search":
		return "search"
	case r.URL.Path == "/api/quota":
		return "quota"
	case strings.HasPrefix(r.URL.Path, "/api/public"):
		return "public"
	default:
		return "unknown"
	}
}

func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// corsWrap sets Access-Control-Allow-Origin on public endpoints per
// cfg.PublicCorsOrigin.
func (s *Server) corsWrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cors.Enabled {
			w.Header().Set("Access-Control-Allow-Origin", s.cors.Origin)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := anchorerrors.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(anchorerrors.ToJSON(err))
}

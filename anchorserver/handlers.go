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
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/container"
	"github.com/sage-x-project/anchor/internal/metrics"
	"github.com/sage-x-project/anchor/objectpayload"
	"github.com/sage-x-project/anchor/pathpolicy"
	"github.com/sage-x-project/anchor/storage"
)

func requestPath(r *http.Request) string {
	return "/" + r.PathValue("path")
}

// handlePut implements PUT /api/object/<path>.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)
	acct, err := s.resolveURLSigned(r, pathSignable("PUT", path))
	if err != nil {
		writeError(w, err)
		return
	}
	_, parsed, err := pathpolicy.AssertPathAccess(s.policies, path, acct, pathpolicy.OpPut)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.ContentLength > s.quotas.MaxObjectSize {
		writeError(w, anchorerrors.ErrQuotaExceeded.WithMessage("object exceeds maxObjectSize"))
		return
	}
	limited := io.LimitReader(r.Body, s.quotas.MaxObjectSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		writeError(w, anchorerrors.ErrInvalidArgument.Wrap(err))
		return
	}
	if int64(len(data)) > s.quotas.MaxObjectSize {
		writeError(w, anchorerrors.ErrQuotaExceeded.WithMessage("object exceeds maxObjectSize"))
		return
	}
	metrics.RequestBodySize.Observe(float64(len(data)))

	tags, err := s.parseAndValidateTags(r.URL.Query().Get("tags"))
	if err != nil {
		writeError(w, err)
		return
	}

	visibility := storage.VisibilityPrivate
	if v := r.URL.Query().Get("visibility"); v == string(storage.VisibilityPublic) {
		visibility = storage.VisibilityPublic
	} else if v != "" && v != string(storage.VisibilityPrivate) {
		writeError(w, anchorerrors.ErrInvalidArgument.WithMessage("visibility must be public or private"))
		return
	}

	if needsContentValidation := s.validatorFor(parsed.Relative) != nil; visibility == storage.VisibilityPublic || needsContentValidation {
		if err := s.validatePutContent(path, parsed, data, visibility); err != nil {
			writeError(w, err)
			return
		}
	}

	ctx := r.Context()
	reservation, err := s.backend.ReserveUpload(ctx, parsed.Owner, path, int64(len(data)), storage.ReserveOptions{
		TTL:    5 * time.Minute,
		Limits: &s.quotas,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ReservationsCreated.WithLabelValues("created").Inc()
	metrics.GetGlobalCollector().RecordReservationOpened()

	obj, err := s.backend.Put(ctx, path, data, storage.PutOptions{Owner: parsed.Owner, Tags: tags, Visibility: visibility})
	if err != nil {
		s.releaseReservation(ctx, reservation)
		metrics.ObjectOperations.WithLabelValues("put", "error").Inc()
		writeError(w, err)
		return
	}
	if err := s.backend.CommitUpload(ctx, reservation.ID); err != nil {
		s.releaseReservation(ctx, reservation)
		writeError(w, err)
		return
	}
	metrics.ReservationsResolved.WithLabelValues("commit").Inc()
	metrics.GetGlobalCollector().RecordReservationResolved(true, time.Since(reservation.CreatedAt))
	metrics.ObjectOperations.WithLabelValues("put", "ok").Inc()
	metrics.ObjectSize.Observe(float64(len(data)))

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "object": obj})
}

// releaseReservation frees a reservation after a failed put/commit,
// recording the release against both metric surfaces.
func (s *Server) releaseReservation(ctx context.Context, reservation storage.Reservation) {
	_ = s.backend.ReleaseUpload(ctx, reservation.ID)
	metrics.ReservationsResolved.WithLabelValues("release").Inc()
	metrics.GetGlobalCollector().RecordReservationResolved(false, time.Since(reservation.CreatedAt))
}

// validatePutContent decrypts the container with the anchor account and
// runs the namespace validator, if any. A public
// object that does not name the anchor as a principal fails
// AnchorPrincipalRequired.
func (s *Server) validatePutContent(path string, parsed *pathpolicy.Parsed, data []byte, visibility storage.Visibility) error {
	c, err := container.FromEncodedBuffer(data, []account.Account{s.anchor})
	if err != nil {
		if visibility == storage.VisibilityPublic && (errors.Is(err, anchorerrors.ErrNoMatchingKey) || errors.Is(err, anchorerrors.ErrDecryptionFailed)) {
			return anchorerrors.ErrAnchorPrincipalRequired
		}
		return err
	}
	plaintext, err := c.GetPlaintext()
	if err != nil {
		return err
	}
	payload, err := objectpayload.Unmarshal(plaintext)
	if err != nil {
		return anchorerrors.ErrValidationFailed.Wrap(err)
	}
	if v := s.validatorFor(parsed.Relative); v != nil {
		if ok, msg := v(path, payload.Data, payload.MimeType); !ok {
			return anchorerrors.ErrValidationFailed.WithMessage(msg)
		}
	}
	return nil
}

func (s *Server) validatorFor(relative string) Validator {
	namespace := relative
	if i := strings.IndexByte(relative, '/'); i >= 0 {
		namespace = relative[:i]
	}
	return s.validators[namespace]
}

func (s *Server) parseAndValidateTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	tags := strings.Split(raw, ",")
	if len(tags) > s.tagValidation.MaxTags {
		return nil, anchorerrors.ErrInvalidTag.WithMessage("too many tags")
	}
	for _, t := range tags {
		if len(t) == 0 || len(t) > s.tagValidation.MaxTagLength || !s.tagValidation.Pattern.MatchString(t) {
			return nil, anchorerrors.ErrInvalidTag.WithMessage("invalid tag: " + t)
		}
	}
	return tags, nil
}

// handleGet implements GET /api/object/<path>.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)
	acct, err := s.resolveURLSigned(r, pathSignable("GET", path))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, _, err := pathpolicy.AssertPathAccess(s.policies, path, acct, pathpolicy.OpGet); err != nil {
		writeError(w, err)
		return
	}
	start := time.Now()
	result, err := s.backend.Get(r.Context(), path)
	metrics.GetGlobalCollector().RecordObjectOperation(err == nil, time.Since(start))
	if err != nil {
		metrics.ObjectOperations.WithLabelValues("get", "error").Inc()
		writeError(w, err)
		return
	}
	if result == nil {
		metrics.ObjectOperations.WithLabelValues("get", "not_found").Inc()
		writeError(w, anchorerrors.ErrDocumentNotFound)
		return
	}
	metrics.ObjectOperations.WithLabelValues("get", "ok").Inc()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// handleDelete implements DELETE /api/object/<path>.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)
	acct, err := s.resolveURLSigned(r, pathSignable("DELETE", path))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, _, err := pathpolicy.AssertPathAccess(s.policies, path, acct, pathpolicy.OpDelete); err != nil {
		writeError(w, err)
		return
	}
	start := time.Now()
	deleted, err := s.backend.Delete(r.Context(), path)
	metrics.GetGlobalCollector().RecordObjectOperation(err == nil, time.Since(start))
	if err != nil {
		metrics.ObjectOperations.WithLabelValues("delete", "error").Inc()
		writeError(w, err)
		return
	}
	metrics.ObjectOperations.WithLabelValues("delete", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "deleted": deleted})
}

// handleMetadata implements GET /api/metadata/<path>.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)
	acct, err := s.resolveURLSigned(r, pathSignable("METADATA", path))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, _, err := pathpolicy.AssertPathAccess(s.policies, path, acct, pathpolicy.OpMetadata); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.backend.Get(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		writeError(w, anchorerrors.ErrDocumentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "object": result.Metadata})
}

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
	"net/http"

	"github.com/sage-x-project/anchor/signing"
)

// handleQuota implements GET /api/quota. The remaining* values are always
// computed from this server's own QuotaLimits, never from the backend's
// internal bookkeeping — the server-reported values are authoritative at
// the protocol edge even if the backend's own QuotaStatus.Remaining*
// diverge.
func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	acct, err := s.resolveURLSigned(r, signing.Signable{signing.String("QUOTA")})
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := s.backend.GetQuotaStatus(r.Context(), acct.PublicKeyString())
	if err != nil {
		writeError(w, err)
		return
	}

	remainingObjects := s.quotas.MaxObjectsPerUser - status.ObjectCount
	if remainingObjects < 0 {
		remainingObjects = 0
	}
	remainingSize := s.quotas.MaxStoragePerUser - status.TotalSize
	if remainingSize < 0 {
		remainingSize = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"quota": map[string]interface{}{
			"objectCount":      status.ObjectCount,
			"totalSize":        status.TotalSize,
			"remainingObjects": remainingObjects,
			"remainingSize":    remainingSize,
		},
	})
}

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

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/signing"
	"github.com/sage-x-project/anchor/storage"
)

// searchRequest is the body-signed JSON envelope for POST /api/search
//.
type searchRequest struct {
	Criteria   storage.SearchCriteria  `json:"criteria"`
	Pagination storage.Pagination      `json:"pagination"`
	Account    string                  `json:"account"`
	Signed     signing.HTTPSignedField `json:"signed"`
}

func searchSignable(criteria storage.SearchCriteria, pagination storage.Pagination) signing.Signable {
	return signing.Signable{
		signing.String("search"),
		signing.String(criteria.PathPrefix),
		signing.Bool(criteria.Recursive),
		signing.String(joinTags(criteria.Tags)),
		signing.String(criteria.Name),
		signing.String(criteria.Owner),
		signing.String(string(criteria.Visibility)),
		signing.Bool(criteria.HasVisibility),
		signing.Int(int64(pagination.Limit)),
		signing.String(pagination.Cursor),
	}
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

// handleSearch implements POST /api/search: body-signed auth,
// owner scoping unless the request explicitly and successfully asks for a
// public cross-owner query, limit clamping to quotas.MaxSearchLimit.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, anchorerrors.ErrInvalidArgument.Wrap(err))
		return
	}

	acct, err := s.resolveBodySigned(req.Account, &req.Signed, searchSignable(req.Criteria, req.Pagination))
	if err != nil {
		writeError(w, err)
		return
	}

	criteria := req.Criteria
	if criteria.HasVisibility && criteria.Visibility == storage.VisibilityPublic {
		criteria.Visibility = storage.VisibilityPublic
	} else {
		criteria.Owner = acct.PublicKeyString()
		if !(criteria.HasVisibility && criteria.Visibility == storage.VisibilityPrivate) {
			criteria.HasVisibility = false
		}
	}

	pagination := req.Pagination
	if pagination.Limit <= 0 || pagination.Limit > s.quotas.MaxSearchLimit {
		pagination.Limit = s.quotas.MaxSearchLimit
	}

	result, err := s.backend.Search(r.Context(), criteria, pagination)
	if err != nil {
		writeError(w, err)
		return
	}
	body := map[string]interface{}{"ok": true, "results": result.Results}
	if result.NextCursor != "" {
		body["nextCursor"] = result.NextCursor
	}
	writeJSON(w, http.StatusOK, body)
}

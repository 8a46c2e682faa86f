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

package anchorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/container"
	"github.com/sage-x-project/anchor/objectpayload"
	"github.com/sage-x-project/anchor/signing"
	"github.com/sage-x-project/anchor/storage"
)

func signedQuery(acct account.Account, signable signing.Signable, extra url.Values) (string, error) {
	field, err := signing.SignData(acct, signable)
	if err != nil {
		return "", err
	}
	q := extra
	if q == nil {
		q = url.Values{}
	}
	q.Set("account", acct.PublicKeyString())
	q.Set("signed.nonce", field.Nonce)
	q.Set("signed.timestamp", field.Timestamp)
	q.Set("signed.signature", field.Signature)
	return q.Encode(), nil
}

func pathSignable(op, path string) signing.Signable {
	return signing.Signable{signing.String(op), signing.String(path)}
}

// readErrorBody converts a non-2xx HTTP response into the typed
// anchorerrors variant.
func readErrorBody(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	return anchorerrors.FromJSON(body)
}

// PutRequest configures Client.Put.
type PutRequest struct {
	Path       string
	Data       []byte
	MimeType   string
	Tags       []string
	Visibility storage.Visibility

	// Account both signs the PUT request and is the container's primary
	// principal.
	Account account.Account
	// AnchorAccount overrides the Options.AnchorAccount co-principal
	// added when Visibility is public; normally left nil.
	AnchorAccount account.Account
}

// Put builds an Encrypted Container for req and uploads it.
func (c *Client) Put(ctx context.Context, req PutRequest) (storage.Object, error) {
	var obj storage.Object
	payload, err := objectpayload.Marshal(objectpayload.Payload{MimeType: req.MimeType, Data: req.Data})
	if err != nil {
		return obj, err
	}

	principals := []account.Account{req.Account}
	if req.Visibility == storage.VisibilityPublic {
		anchor := req.AnchorAccount
		if anchor == nil {
			anchor = c.anchor
		}
		if anchor == nil {
			return obj, anchorerrors.ErrAnchorPrincipalRequired.WithMessage("public PUT requires an anchor co-principal")
		}
		principals = append(principals, anchor)
	}

	ct, err := container.FromPlaintext(payload, principals, container.Options{})
	if err != nil {
		return obj, err
	}
	encoded, err := ct.GetEncodedBuffer()
	if err != nil {
		return obj, err
	}

	extra := url.Values{}
	if req.Visibility != "" {
		extra.Set("visibility", string(req.Visibility))
	}
	if len(req.Tags) > 0 {
		extra.Set("tags", strings.Join(req.Tags, ","))
	}
	query, err := signedQuery(req.Account, pathSignable("PUT", req.Path), extra)
	if err != nil {
		return obj, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url("/api/object"+req.Path)+"?"+query, bytes.NewReader(encoded))
	if err != nil {
		return obj, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return obj, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return obj, readErrorBody(resp)
	}
	var body struct {
		OK     bool           `json:"ok"`
		Object storage.Object `json:"object"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return obj, anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	return body.Object, nil
}

// GetResult is a decrypted object's content and MIME type.
type GetResult struct {
	Data     []byte
	MimeType string
}

// Get fetches and decrypts path. It returns (nil, nil) specifically when
// the server reports DocumentNotFound, rather than surfacing an error.
func (c *Client) Get(ctx context.Context, path string, acct account.Account) (*GetResult, error) {
	query, err := signedQuery(acct, pathSignable("GET", path), nil)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/object"+path)+"?"+query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		wireErr := readErrorBody(resp)
		if errors.Is(wireErr, anchorerrors.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, wireErr
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, anchorerrors.ErrInvalidResponse.Wrap(err)
	}

	candidates := []account.Account{acct}
	if c.anchor != nil {
		candidates = append(candidates, c.anchor)
	}
	ct, err := container.FromEncodedBuffer(data, candidates)
	if err != nil {
		return nil, err
	}
	plaintext, err := ct.GetPlaintext()
	if err != nil {
		return nil, err
	}
	payload, err := objectpayload.Unmarshal(plaintext)
	if err != nil {
		return nil, anchorerrors.ErrMalformedContainer.Wrap(err)
	}
	return &GetResult{Data: payload.Data, MimeType: payload.MimeType}, nil
}

// Delete removes path.
func (c *Client) Delete(ctx context.Context, path string, acct account.Account) (bool, error) {
	query, err := signedQuery(acct, pathSignable("DELETE", path), nil)
	if err != nil {
		return false, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/api/object"+path)+"?"+query, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, readErrorBody(resp)
	}
	var body struct {
		OK      bool `json:"ok"`
		Deleted bool `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	return body.Deleted, nil
}

// GetMetadata fetches an object's metadata without its ciphertext.
func (c *Client) GetMetadata(ctx context.Context, path string, acct account.Account) (storage.Object, error) {
	var obj storage.Object
	query, err := signedQuery(acct, pathSignable("METADATA", path), nil)
	if err != nil {
		return obj, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/metadata"+path)+"?"+query, nil)
	if err != nil {
		return obj, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return obj, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return obj, readErrorBody(resp)
	}
	var body struct {
		OK     bool           `json:"ok"`
		Object storage.Object `json:"object"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return obj, anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	return body.Object, nil
}

// Search runs a scoped search.
func (c *Client) Search(ctx context.Context, criteria storage.SearchCriteria, pagination storage.Pagination, acct account.Account) (storage.SearchResult, error) {
	var result storage.SearchResult
	signable := signing.Signable{
		signing.String("search"),
		signing.String(criteria.PathPrefix),
		signing.Bool(criteria.Recursive),
		signing.String(strings.Join(criteria.Tags, ",")),
		signing.String(criteria.Name),
		signing.String(criteria.Owner),
		signing.String(string(criteria.Visibility)),
		signing.Bool(criteria.HasVisibility),
		signing.Int(int64(pagination.Limit)),
		signing.String(pagination.Cursor),
	}
	field, err := signing.SignData(acct, signable)
	if err != nil {
		return result, err
	}
	reqBody := struct {
		Criteria   storage.SearchCriteria  `json:"criteria"`
		Pagination storage.Pagination      `json:"pagination"`
		Account    string                  `json:"account"`
		Signed     signing.HTTPSignedField `json:"signed"`
	}{Criteria: criteria, Pagination: pagination, Account: acct.PublicKeyString(), Signed: *field}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return result, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/search"), bytes.NewReader(data))
	if err != nil {
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return result, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return result, readErrorBody(resp)
	}
	var body struct {
		OK         bool             `json:"ok"`
		Results    []storage.Object `json:"results"`
		NextCursor string           `json:"nextCursor"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return result, anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	result.Results = body.Results
	result.NextCursor = body.NextCursor
	return result, nil
}

// GetQuotaStatus fetches the server-reported quota status.
func (c *Client) GetQuotaStatus(ctx context.Context, acct account.Account) (storage.QuotaStatus, error) {
	var status storage.QuotaStatus
	query, err := signedQuery(acct, signing.Signable{signing.String("QUOTA")}, nil)
	if err != nil {
		return status, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/quota")+"?"+query, nil)
	if err != nil {
		return status, err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return status, anchorerrors.ErrServiceUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status, readErrorBody(resp)
	}
	var body struct {
		OK    bool                `json:"ok"`
		Quota storage.QuotaStatus `json:"quota"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return status, anchorerrors.ErrInvalidResponse.Wrap(err)
	}
	return body.Quota, nil
}

// PublicURLRequest configures Client.GetPublicURL.
type PublicURLRequest struct {
	// TTL of zero means 1 hour. A negative TTL is passed through and
	// yields an already-expired URL, which servers reject.
	Path    string
	TTL     time.Duration
	Account account.Account
}

// GetPublicURL signs [path, expires] and returns a fetchable URL.
func (c *Client) GetPublicURL(req PublicURLRequest) (string, error) {
	ttl := req.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	expires := time.Now().Add(ttl).Unix()
	signable := signing.Signable{signing.String(req.Path), signing.Int(expires)}
	field, err := signing.SignData(req.Account, signable)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("nonce", field.Nonce)
	q.Set("timestamp", field.Timestamp)
	q.Set("signature", field.Signature)
	q.Set("account", req.Account.PublicKeyString())
	return c.url("/api/public"+req.Path) + "?" + q.Encode(), nil
}

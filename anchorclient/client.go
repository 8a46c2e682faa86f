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
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sage-x-project/anchor/account"
)

// Options configures a Client.
type Options struct {
	// Service names the anchor to resolve via Resolver. Ignored if
	// BaseURL is set directly.
	Service  string
	BaseURL  string
	Resolver Resolver

	// AnchorAccount is a public-only Account naming the anchor's public
	// key, used as the default co-principal on a public PUT and as the
	// decrypting identity implied by GET on a public URL. It need not
	// (and normally does not) hold a private key client-side.
	AnchorAccount account.Account

	HTTPClient *http.Client
}

// Client is the anchor protocol's typed client.
type Client struct {
	baseURL string
	anchor  account.Account
	http    *http.Client
}

// New constructs a Client, resolving BaseURL via opts.Resolver if BaseURL
// is empty.
func New(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		resolver := opts.Resolver
		if resolver == nil {
			resolver = DefaultResolver()
		}
		url, err := resolver.Resolve(opts.Service)
		if err != nil {
			return nil, err
		}
		baseURL = url
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		anchor:  opts.AnchorAccount,
		http:    httpClient,
	}, nil
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s%s", c.baseURL, path)
}

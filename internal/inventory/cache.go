// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awsctl/awsctl/internal/cacheutil"
	"github.com/awsctl/awsctl/internal/log"
)

// CacheKey builds the clear cache key from the query shape: regions,
// statuses, server-side filters and the clusters switch. Grouping options
// are deliberately excluded, they reshape the same dataset.
func CacheKey(opts Options) string {
	regions := append([]string{}, opts.Regions...)
	sort.Strings(regions)

	statuses := append([]string{}, opts.Statuses...)
	sort.Strings(statuses)

	filterNames := make([]string, 0, len(opts.AWSFilters))
	for name := range opts.AWSFilters {
		filterNames = append(filterNames, name)
	}
	sort.Strings(filterNames)

	var b strings.Builder
	fmt.Fprintf(&b, "regions=%s;statuses=%s;clusters=%t",
		strings.Join(regions, ","), strings.Join(statuses, ","), opts.IncludeClusters)
	for _, name := range filterNames {
		fmt.Fprintf(&b, ";%s=%s", name, strings.Join(opts.AWSFilters[name], "|"))
	}
	return b.String()
}

// ReadCache returns the cached host set for this query shape if one exists
// and is younger than ttl. Encrypted entries need the matching passphrase;
// a missing or wrong passphrase is a miss, not an error.
func ReadCache(prefix string, opts Options, ttl time.Duration, passphrase string) ([]Host, bool) {
	entry, ok := cacheutil.ReadFresh([]string{prefix}, CacheKey(opts), ttl)
	if !ok {
		return nil, false
	}

	data := entry.Data
	if IsEncrypted(data) {
		if passphrase == "" {
			log.Warnf("cached inventory is encrypted and no passphrase was given")
			return nil, false
		}
		var err error
		data, err = Decrypt(data, passphrase)
		if err != nil {
			log.Warnf("decrypting cached inventory: %v", err)
			return nil, false
		}
	}

	hosts, err := UnmarshalHosts(data)
	if err != nil {
		log.Warnf("discarding unreadable cache entry %s: %v", entry.Path, err)
		return nil, false
	}
	return hosts, true
}

// WriteCache stores the host set under the query shape key, encrypted when a
// passphrase is given.
func WriteCache(prefix string, opts Options, hosts []Host, passphrase string) error {
	data, err := json.Marshal(hosts)
	if err != nil {
		return fmt.Errorf("marshaling hosts for cache: %w", err)
	}

	if passphrase != "" {
		data, err = Encrypt(data, passphrase)
		if err != nil {
			return fmt.Errorf("encrypting cache entry: %w", err)
		}
	}

	return cacheutil.Write([]string{prefix}, CacheKey(opts), data)
}

// ReadSnapshot returns the cached host rows regardless of age, for drift
// reporting against the live dataset.
func ReadSnapshot(prefix string, opts Options, passphrase string) ([]Host, bool) {
	entry, ok := cacheutil.Read([]string{prefix}, CacheKey(opts))
	if !ok {
		return nil, false
	}

	data := entry.Data
	if IsEncrypted(data) {
		if passphrase == "" {
			return nil, false
		}
		var err error
		data, err = Decrypt(data, passphrase)
		if err != nil {
			return nil, false
		}
	}

	hosts, err := UnmarshalHosts(data)
	if err != nil {
		return nil, false
	}
	return hosts, true
}

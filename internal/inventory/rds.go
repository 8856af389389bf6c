// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/smithy-go"

	"github.com/awsctl/awsctl/internal/log"
)

// Client is the slice of the RDS API the fetcher needs. The SDK's paginator
// client interfaces keep this mockable.
type Client interface {
	rds.DescribeDBInstancesAPIClient
	rds.DescribeDBClustersAPIClient
}

// Fetch enumerates RDS instances (and clusters when requested) across every
// region in opts. clientFor builds a region-scoped client. An AccessDenied
// region is fatal under strict permissions, otherwise skipped with a
// warning.
func Fetch(ctx context.Context, clientFor func(region string) (Client, error), opts Options) ([]Host, error) {
	//nolint:prealloc
	var hosts []Host

	for _, region := range opts.Regions {
		client, err := clientFor(region)
		if err != nil {
			return nil, fmt.Errorf("building client for %s: %w", region, err)
		}

		regionHosts, err := fetchRegion(ctx, client, region, opts)
		if err != nil {
			if isAccessDenied(err) && !opts.StrictPermissions {
				log.Warnf("skipping region %s: %v", region, err)
				continue
			}
			return nil, err
		}
		hosts = append(hosts, regionHosts...)
	}

	return hosts, nil
}

// fetchRegion pulls one region's instances and clusters through the
// paginators.
func fetchRegion(ctx context.Context, client Client, region string, opts Options) ([]Host, error) {
	//nolint:prealloc
	var hosts []Host

	filters := buildAWSFilters(opts.AWSFilters)

	instPaginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{
		Filters: filters,
	})
	for instPaginator.HasMorePages() {
		page, err := instPaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing instances in %s: %w", region, err)
		}

		for _, instance := range page.DBInstances {
			if !statusWanted(opts.Statuses, aws.ToString(instance.DBInstanceStatus)) {
				continue
			}
			host, err := newHost(aws.ToString(instance.DBInstanceIdentifier), instance, region)
			if err != nil {
				return nil, err
			}
			hosts = append(hosts, host)
		}
	}

	if !opts.IncludeClusters {
		return hosts, nil
	}

	clusterPaginator := rds.NewDescribeDBClustersPaginator(client, &rds.DescribeDBClustersInput{
		Filters: filters,
	})
	for clusterPaginator.HasMorePages() {
		page, err := clusterPaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing clusters in %s: %w", region, err)
		}

		for _, cluster := range page.DBClusters {
			if !statusWanted(opts.Statuses, aws.ToString(cluster.Status)) {
				continue
			}
			host, err := newHost(aws.ToString(cluster.DBClusterIdentifier), cluster, region)
			if err != nil {
				return nil, err
			}
			hosts = append(hosts, host)
		}
	}

	return hosts, nil
}

// newHost rounds an SDK describe struct through JSON so hostvars carry the
// wire field names, then brands it with the region.
func newHost(name string, describe interface{}, region string) (Host, error) {
	raw, err := json.Marshal(describe)
	if err != nil {
		return Host{}, fmt.Errorf("marshaling %s: %w", name, err)
	}

	vars := make(map[string]interface{})
	if err := json.Unmarshal(raw, &vars); err != nil {
		return Host{}, fmt.Errorf("rebuilding %s: %w", name, err)
	}
	vars["region"] = region

	return Host{Name: name, Vars: vars}, nil
}

// statusWanted applies the --statuses filter. The literal "all" disables it.
func statusWanted(statuses []string, status string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, wanted := range statuses {
		if strings.EqualFold(wanted, "all") || strings.EqualFold(wanted, status) {
			return true
		}
	}
	return false
}

// buildAWSFilters converts --aws-filter pairs to API filters, sorted by name
// so the query shape is stable for cache keying.
func buildAWSFilters(specs map[string][]string) []types.Filter {
	if len(specs) == 0 {
		return nil
	}

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	filters := make([]types.Filter, 0, len(names))
	for _, name := range names {
		filters = append(filters, types.Filter{
			Name:   aws.String(name),
			Values: specs[name],
		})
	}
	return filters
}

// isAccessDenied classifies the API error codes IAM hands back when the
// caller lacks rds:Describe* in a region.
func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return true
	}
	return false
}

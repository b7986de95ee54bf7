// Package discovery locates Mopidy servers announcing themselves over
// mDNS.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
)

const mopidyService = "_mopidy-http._tcp"

// Server is a Mopidy HTTP endpoint found on the local network.
type Server struct {
	Name string
	Host string
	Port int
}

// Browse scans the local network for Mopidy servers until the timeout
// elapses. Servers that announce no IPv4 address are skipped.
func Browse(ctx context.Context, timeout time.Duration) ([]Server, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var servers []Server
	done := make(chan struct{})

	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for entry := range entries {
			if entry == nil || len(entry.AddrIPv4) == 0 {
				continue
			}
			if seen[entry.Instance] {
				continue
			}
			seen[entry.Instance] = true
			servers = append(servers, Server{
				Name: entry.Instance,
				Host: entry.AddrIPv4[0].String(),
				Port: entry.Port,
			})
		}
	}()

	if err := resolver.Browse(ctx, mopidyService, "local.", entries); err != nil {
		return nil, fmt.Errorf("browsing for servers: %w", err)
	}

	<-ctx.Done()
	<-done
	return servers, nil
}

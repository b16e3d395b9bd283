//START OF FILE pickleball/internal/services/cluster/discovery.go
package cluster

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"

	consul "github.com/hashicorp/consul/api"
)

var ErrNoHealthyInstance = errors.New("no healthy instance")

// DiscoverAnyHealthy returns host:port of a random passing instance of serviceName.
func DiscoverAnyHealthy(client *consul.Client, serviceName string) (string, error) {
	entries, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", fmt.Errorf("failed to query consul for %s: %w", serviceName, err)
	}
	return pickAddress(entries, rand.IntN)
}

// pickAddress chooses one entry with pick and prefers the service address
// over the node address.
func pickAddress(entries []*consul.ServiceEntry, pick func(n int) int) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoHealthyInstance
	}
	s := entries[pick(len(entries))]
	addr := s.Service.Address
	if addr == "" && s.Node != nil {
		addr = s.Node.Address
	}
	return net.JoinHostPort(addr, strconv.Itoa(s.Service.Port)), nil
}

//END OF FILE pickleball/internal/services/cluster/discovery.go

//START OF FILE pickleball/internal/services/cluster/register.go
package cluster

import (
	"fmt"
	"net"
	"strconv"

	consul "github.com/hashicorp/consul/api"
)

// Registration describes this instance to consul.
type Registration struct {
	ServiceName string
	Host        string // advertised address, also used by the health check
	Port        int
	Tags        []string
}

// ServiceID is unique per host so several instances can share a name.
func (r Registration) ServiceID() string {
	return fmt.Sprintf("%s-%s", r.ServiceName, r.Host)
}

func (r Registration) agentRegistration() *consul.AgentServiceRegistration {
	hostPort := net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	return &consul.AgentServiceRegistration{
		ID:      r.ServiceID(),
		Name:    r.ServiceName,
		Address: r.Host,
		Port:    r.Port,
		Tags:    r.Tags,
		Check: &consul.AgentServiceCheck{
			HTTP:                           "http://" + hostPort + "/health",
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// RegisterService announces the instance with an HTTP health check on /health.
func RegisterService(client *consul.Client, reg Registration) error {
	if err := client.Agent().ServiceRegister(reg.agentRegistration()); err != nil {
		return fmt.Errorf("failed to register %s in consul: %w", reg.ServiceID(), err)
	}
	return nil
}

// DeregisterService removes the instance on shutdown.
func DeregisterService(client *consul.Client, reg Registration) error {
	if err := client.Agent().ServiceDeregister(reg.ServiceID()); err != nil {
		return fmt.Errorf("failed to deregister %s from consul: %w", reg.ServiceID(), err)
	}
	return nil
}

//END OF FILE pickleball/internal/services/cluster/register.go

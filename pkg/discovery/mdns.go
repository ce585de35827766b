// ABOUTME: mDNS service discovery for sound monitors
// ABOUTME: Advertises a running monitor and browses for monitors on the local network
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type of a sound monitor
const ServiceType = "_sfxmon._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Path        string   // WebSocket path, advertised in TXT
	Info        []string // extra key=value TXT records
}

// Manager handles mDNS operations
type Manager struct {
	config   Config
	ctx      context.Context
	cancel   context.CancelFunc
	monitors chan *ServiceInfo
}

// ServiceInfo describes a discovered monitor
type ServiceInfo struct {
	Name string
	Host string
	Port int
	Path string
	TXT  map[string]string
}

// Addr returns host:port
func (s *ServiceInfo) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:   config,
		ctx:      ctx,
		cancel:   cancel,
		monitors: make(chan *ServiceInfo, 10),
	}
}

// txt builds the TXT records for the advertised service
func (m *Manager) txt() []string {
	records := []string{"path=" + m.config.Path}
	return append(records, m.config.Info...)
}

// Advertise announces this monitor via mDNS until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for monitors until Stop. Results arrive on Monitors.
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for monitors
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				info := toServiceInfo(entry)
				log.Printf("Discovered monitor: %s at %s", info.Name, info.Addr())

				select {
				case m.monitors <- info:
				case <-m.ctx.Done():
				}
			}
		}()

		params := mdns.DefaultParams(ServiceType)
		params.Timeout = 3 * time.Second
		params.Entries = entries
		params.DisableIPv6 = true
		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
		}
		close(entries)
		<-done
	}
}

// Monitors returns the channel of discovered monitors
func (m *Manager) Monitors() <-chan *ServiceInfo {
	return m.monitors
}

// Stop stops advertising and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// Discover runs a single query and returns the monitors that answered
func Discover(timeout time.Duration) ([]*ServiceInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var found []*ServiceInfo
	done := make(chan struct{})

	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for entry := range entries {
			info := toServiceInfo(entry)
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			found = append(found, info)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func toServiceInfo(entry *mdns.ServiceEntry) *ServiceInfo {
	info := &ServiceInfo{
		Name: entry.Name,
		Port: entry.Port,
		TXT:  parseTXT(entry.InfoFields),
	}
	if entry.AddrV4 != nil {
		info.Host = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		info.Host = entry.AddrV6.String()
	} else {
		info.Host = entry.Host
	}
	info.Path = info.TXT["path"]
	return info
}

// parseTXT splits key=value records; bare keys map to ""
func parseTXT(fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		out[k] = v
	}
	return out
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}

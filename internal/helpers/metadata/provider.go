package metadata

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	BootIDKey          = "boot_id"
	LaunchTimestampKey = "launch_timestamp"
	HostnameKey        = "hostname"
)

// Provider hands out process-wide identity values so every log line and
// result from one process carries the same boot id.
type Provider struct {
	once          sync.Once
	bootID        string
	launchTime    int64
	formattedTime string
	hostname      string
}

var globalProvider = &Provider{}

func GetProvider() *Provider {
	return globalProvider
}

func (p *Provider) GetMetadata() map[string]string {
	p.once.Do(p.initialize)

	return map[string]string{
		BootIDKey:          p.bootID,
		LaunchTimestampKey: p.formattedTime,
		HostnameKey:        p.hostname,
	}
}

func (p *Provider) GetBootID() string {
	p.once.Do(p.initialize)
	return p.bootID
}

func (p *Provider) GetLaunchTimestamp() int64 {
	p.once.Do(p.initialize)
	return p.launchTime
}

// GetHostname returns the local hostname, or "" when the OS cannot report it.
func (p *Provider) GetHostname() string {
	p.once.Do(p.initialize)
	return p.hostname
}

// LogArgs returns the metadata as slog key/value pairs.
func (p *Provider) LogArgs() []any {
	p.once.Do(p.initialize)
	return []any{BootIDKey, p.bootID, LaunchTimestampKey, p.formattedTime}
}

func (p *Provider) initialize() {
	p.bootID = uuid.New().String()
	p.launchTime = time.Now().UnixNano()
	p.formattedTime = time.Unix(0, p.launchTime).Format(time.RFC3339Nano)
	if name, err := os.Hostname(); err == nil {
		p.hostname = strings.TrimSpace(name)
	}
}

// Reset resets the global provider state - only for testing purposes.
func Reset() {
	globalProvider = &Provider{}
}

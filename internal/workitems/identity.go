package workitems

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// machineIDFiles are probed in order for a stable OS-level machine
// identifier.
var machineIDFiles = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// localIdentity resolves the OS machine identifier and hostname of the
// current machine. When no machine-id file is readable the hostname doubles
// as the identifier, which is stable enough for a single-user setup.
func localIdentity() (osID, name string, err error) {
	name, err = os.Hostname()
	if err != nil {
		return "", "", fmt.Errorf("resolving hostname: %w", err)
	}
	for _, path := range machineIDFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, name, nil
		}
	}
	return name, name, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

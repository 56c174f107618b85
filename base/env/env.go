package env

import (
	"os"
)

// PodName falls back to the host name outside kubernetes
func PodName() string {
	if name := os.Getenv("PODNAME"); name != "" {
		return name
	}
	name, _ := os.Hostname()
	return name
}

package instance

import "os"

const envInstanceID = "LUXEHOME_INSTANCE_ID"

// GetID identifies this process in logs. It prefers LUXEHOME_INSTANCE_ID,
// then the hostname (the pod name on Cloud Run and Kubernetes).
func GetID() string {
	if id := os.Getenv(envInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}

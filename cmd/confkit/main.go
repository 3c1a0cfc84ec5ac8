// Confkit loads, validates and inspects application configuration described
// by a confkit.yaml manifest.
//
// Usage:
//
//	# Validate the configuration for the active profile
//	confkit validate
//
//	# Print the masked configuration as YAML
//	confkit print --format yaml
//
//	# Read one value and show where it came from
//	confkit get server.port
//	confkit source server.port
//
//	# Encrypt a secret for a configuration file
//	confkit encrypt 's3cret' --key-file .confkit.key
//
//	# Watch files and serve Prometheus metrics
//	confkit watch --metrics-addr 127.0.0.1:9464
package main

import "os"

func main() {
	os.Exit(Execute())
}

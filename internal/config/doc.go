// Package config loads pulsedcm configuration from local and global YAML files.
// CLI code resolves precedence: flag, then local file, then global file.
package config

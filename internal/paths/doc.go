// Package paths resolves per-account storage locations under a common root.
package paths

// Package startup loads configuration from the environment, validates the
// archive and data directories, and produces the structured startup and
// shutdown log output.
package startup

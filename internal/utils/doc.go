// Package utils holds small helpers shared by the providers and the CLI:
// [DoPostSync] for JSON round trips over HTTP, and string helpers for
// printing and truncating payloads in logs and errors.
package utils

// Package server is the HTTP front door: health and debug endpoints, the
// price lookup, the providers list, Prometheus metrics, and the /ws push
// channel that streams published ticks to clients.
package server

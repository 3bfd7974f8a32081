// Package resolve turns collected hostnames into IP addresses. Lookups go
// through either the system resolver or a configured DNS server, run on a
// fixed pool of workers with bounded retry of transient failures, and every
// result funnels back to a single consumer goroutine.
package resolve

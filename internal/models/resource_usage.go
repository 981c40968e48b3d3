// Package models defines the data shapes shared between the panel core,
// the daemon transport, and the HTTP surface: resource snapshots, configured
// limits, allocations, and lifecycle status.
package models

// StatsPayload is the wire shape of one inbound stats event from the node
// daemon. Uptime is optional on the wire and defaults to zero when absent.
type StatsPayload struct {
	MemoryBytes uint64  `json:"memory_bytes"`
	CPUAbsolute float64 `json:"cpu_absolute"`
	DiskBytes   uint64  `json:"disk_bytes"`
	UptimeMS    uint64  `json:"uptime,omitempty"`
}

// ResourceSnapshot is one decoded stats sample for a managed server. A new
// snapshot supersedes the previous one wholesale; fields are never merged.
type ResourceSnapshot struct {
	MemoryBytes uint64  `json:"memory_bytes"`
	CPUPercent  float64 `json:"cpu_percent"`
	DiskBytes   uint64  `json:"disk_bytes"`
	UptimeMS    uint64  `json:"uptime_ms"`
}

// Snapshot converts the wire payload into an immutable snapshot.
func (p StatsPayload) Snapshot() ResourceSnapshot {
	return ResourceSnapshot{
		MemoryBytes: p.MemoryBytes,
		CPUPercent:  p.CPUAbsolute,
		DiskBytes:   p.DiskBytes,
		UptimeMS:    p.UptimeMS,
	}
}

// Copy returns a deep copy of the snapshot so callers can mutate safely.
func (s *ResourceSnapshot) Copy() *ResourceSnapshot {
	if s == nil {
		return nil
	}
	dup := *s
	return &dup
}

// ResourceLimits holds the configured ceilings for a server. CPU is in
// percent, memory and disk in mebibytes. A zero value means no limit is
// configured (displayed as unbounded), never a limit of zero.
type ResourceLimits struct {
	CPUPercent uint32 `json:"cpu"`
	MemoryMiB  uint32 `json:"memory"`
	DiskMiB    uint32 `json:"disk"`
}

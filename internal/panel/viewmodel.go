package panel

import (
	"fmt"
	"sync"

	"srvpanel/internal/models"
	"srvpanel/internal/units"
)

const (
	offlineText        = "Offline"
	addressPlaceholder = "n/a"
)

// ResourceDisplay is the rendered view of one resource. Text is the final
// string shown next to the resource icon; Current and Limit carry the
// underlying pair for consumers that lay the two out separately.
type ResourceDisplay struct {
	Current     string `json:"current"`
	Limit       string `json:"limit"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Muted       bool   `json:"muted,omitempty"`
}

// DisplayModel is the presentation-ready view of the server's resource usage.
// It is derived wholesale from the latest snapshot, the configured limits,
// the lifecycle status, and the allocation list; it carries no other state.
type DisplayModel struct {
	Uptime  string          `json:"uptime"`
	Address string          `json:"address"`
	CPU     ResourceDisplay `json:"cpu"`
	Memory  ResourceDisplay `json:"memory"`
	Disk    ResourceDisplay `json:"disk"`
}

// ViewModel accumulates the latest resource snapshot together with the
// lifecycle status, limits, and allocations, and recomputes the DisplayModel
// whenever any of them changes. A single render callback observes changes.
//
// State starts from an all-zero snapshot and an offline status, so the panel
// renders placeholders until the first inputs arrive.
type ViewModel struct {
	mu          sync.Mutex
	snapshot    models.ResourceSnapshot
	status      models.Status
	limits      models.ResourceLimits
	allocations []models.Allocation
	model       DisplayModel
	onRender    func(DisplayModel)
}

// NewViewModel builds a view model for a server's configured limits and
// allocations, starting offline with a zero snapshot.
func NewViewModel(limits models.ResourceLimits, allocations []models.Allocation) *ViewModel {
	vm := &ViewModel{
		status:      models.StatusOffline,
		limits:      limits,
		allocations: allocations,
	}
	vm.recomputeLocked()
	return vm
}

// OnRender registers the single downstream render callback. It is invoked
// with a copy of the recomputed model after every input change.
func (vm *ViewModel) OnRender(fn func(DisplayModel)) {
	vm.mu.Lock()
	vm.onRender = fn
	vm.mu.Unlock()
}

// ApplySnapshot replaces the current snapshot wholesale.
func (vm *ViewModel) ApplySnapshot(snap models.ResourceSnapshot) {
	vm.publish(func() { vm.snapshot = snap })
}

// SetStatus records a lifecycle status change from the external state store.
func (vm *ViewModel) SetStatus(status models.Status) {
	vm.publish(func() { vm.status = status })
}

// SetLimits records a configuration change to the resource limits.
func (vm *ViewModel) SetLimits(limits models.ResourceLimits) {
	vm.publish(func() { vm.limits = limits })
}

// SetAllocations records a configuration change to the allocation list.
func (vm *ViewModel) SetAllocations(allocations []models.Allocation) {
	vm.publish(func() { vm.allocations = allocations })
}

// Model returns the most recently computed display model.
func (vm *ViewModel) Model() DisplayModel {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.model
}

// Snapshot returns a copy of the latest decoded resource snapshot.
func (vm *ViewModel) Snapshot() models.ResourceSnapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshot
}

func (vm *ViewModel) publish(mutate func()) {
	vm.mu.Lock()
	mutate()
	vm.recomputeLocked()
	model := vm.model
	notify := vm.onRender
	vm.mu.Unlock()
	if notify != nil {
		notify(model)
	}
}

func (vm *ViewModel) recomputeLocked() {
	snap := vm.snapshot
	offline := vm.status == models.StatusOffline

	cpuPair := ResolvePercent(units.FormatPercent(snap.CPUPercent), vm.limits.CPUPercent)
	memPair := ResolveMebibytes(units.FormatBytes(snap.MemoryBytes), vm.limits.MemoryMiB)
	diskPair := ResolveMebibytes(units.FormatBytes(snap.DiskBytes), vm.limits.DiskMiB)

	cpu := ResourceDisplay{
		Current:     cpuPair.Current,
		Limit:       cpuPair.Limit,
		Text:        cpuPair.Text(),
		Description: Describe("CPU", cpuPair),
	}
	memory := ResourceDisplay{
		Current:     memPair.Current,
		Limit:       memPair.Limit,
		Text:        memPair.Text(),
		Description: Describe("memory", memPair),
	}
	if offline {
		cpu.Text, cpu.Muted = offlineText, true
		memory.Text, memory.Muted = offlineText, true
	}
	// Disk keeps its numeric value even while offline; the limit only shows
	// up in the description, never paired into the text.
	disk := ResourceDisplay{
		Current:     diskPair.Current,
		Limit:       diskPair.Limit,
		Text:        diskPair.Current,
		Description: Describe("disk space", diskPair),
	}

	vm.model = DisplayModel{
		Uptime:  vm.uptimeTextLocked(),
		Address: addressText(vm.allocations),
		CPU:     cpu,
		Memory:  memory,
		Disk:    disk,
	}
}

func (vm *ViewModel) uptimeTextLocked() string {
	if vm.status.IsTransitioning() {
		return vm.status.Title()
	}
	if secs := vm.snapshot.UptimeMS / 1000; secs > 0 {
		return formatDuration(secs)
	}
	return offlineText
}

// formatDuration renders elapsed seconds as HH:MM:SS, with a day count
// prefixed once the duration passes 24 hours.
func formatDuration(totalSeconds uint64) string {
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func addressText(allocations []models.Allocation) string {
	for _, alloc := range allocations {
		if alloc.IsDefault {
			return fmt.Sprintf("%s:%d", alloc.Label(), alloc.Port)
		}
	}
	return addressPlaceholder
}

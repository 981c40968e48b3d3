package panel

import (
	"reflect"
	"testing"

	"srvpanel/internal/constants"
	"srvpanel/internal/models"
)

// fakeTransport implements Transport in-process so channel behavior can be
// driven deterministically.
type fakeTransport struct {
	connected  bool
	sent       []string
	handlers   map[string][]func(string)
	connectFns []func()
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string][]func(string))}
}

func (f *fakeTransport) Connected() bool { return f.connected }

func (f *fakeTransport) Send(event string, args ...string) error {
	f.sent = append(f.sent, event)
	return nil
}

func (f *fakeTransport) Subscribe(event string, fn func(string)) func() {
	f.handlers[event] = append(f.handlers[event], fn)
	return func() { f.handlers[event] = nil }
}

func (f *fakeTransport) SubscribeConnect(fn func()) func() {
	f.connectFns = append(f.connectFns, fn)
	return func() { f.connectFns = nil }
}

func (f *fakeTransport) connect() {
	f.connected = true
	for _, fn := range f.connectFns {
		fn()
	}
}

func (f *fakeTransport) disconnect() { f.connected = false }

func (f *fakeTransport) deliver(event, payload string) {
	for _, fn := range f.handlers[event] {
		fn(payload)
	}
}

func TestChannelRequestsStatsOncePerConnect(t *testing.T) {
	transport := newFakeTransport()
	ch := OpenChannel(transport, func(models.ResourceSnapshot) {})
	defer ch.Close()

	if len(transport.sent) != 0 {
		t.Fatalf("no request should be sent while disconnected, got %v", transport.sent)
	}

	transport.connect()
	if len(transport.sent) != 1 || transport.sent[0] != constants.EventRequestStats {
		t.Fatalf("expected exactly one stats request after connect, got %v", transport.sent)
	}

	// A reconnect cycle re-emits the request exactly once.
	transport.disconnect()
	transport.connect()
	if len(transport.sent) != 2 {
		t.Fatalf("expected one more request after reconnect, got %v", transport.sent)
	}
}

func TestChannelRequestsStatsWhenAlreadyConnected(t *testing.T) {
	transport := newFakeTransport()
	transport.connected = true

	ch := OpenChannel(transport, func(models.ResourceSnapshot) {})
	defer ch.Close()

	if len(transport.sent) != 1 {
		t.Fatalf("expected an immediate request on an already-connected transport, got %v", transport.sent)
	}
}

func TestChannelDecodesStatsPayload(t *testing.T) {
	transport := newFakeTransport()
	var got []models.ResourceSnapshot
	ch := OpenChannel(transport, func(s models.ResourceSnapshot) { got = append(got, s) })
	defer ch.Close()

	transport.deliver(constants.EventStats, `{"memory_bytes":1048576,"cpu_absolute":12.345,"disk_bytes":2000000000,"uptime":5000}`)

	want := models.ResourceSnapshot{
		MemoryBytes: 1048576,
		CPUPercent:  12.345,
		DiskBytes:   2000000000,
		UptimeMS:    5000,
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Fatalf("decoded snapshots = %+v, want one equal to %+v", got, want)
	}
}

func TestChannelDefaultsMissingUptimeToZero(t *testing.T) {
	transport := newFakeTransport()
	var got []models.ResourceSnapshot
	ch := OpenChannel(transport, func(s models.ResourceSnapshot) { got = append(got, s) })
	defer ch.Close()

	transport.deliver(constants.EventStats, `{"memory_bytes":1,"cpu_absolute":2,"disk_bytes":3}`)
	if len(got) != 1 || got[0].UptimeMS != 0 {
		t.Fatalf("expected uptime to default to zero, got %+v", got)
	}
}

func TestChannelSwallowsMalformedPayloads(t *testing.T) {
	transport := newFakeTransport()
	calls := 0
	ch := OpenChannel(transport, func(models.ResourceSnapshot) { calls++ })
	defer ch.Close()

	for _, payload := range []string{
		`{"memory_bytes":104857`, // truncated
		`not json at all`,
		`{"memory_bytes":"texty"}`, // wrong field type
		``,
	} {
		transport.deliver(constants.EventStats, payload)
	}
	if calls != 0 {
		t.Fatalf("malformed payloads must be dropped silently, got %d snapshot(s)", calls)
	}
}

func TestChannelMalformedPayloadLeavesModelUntouched(t *testing.T) {
	transport := newFakeTransport()
	vm := NewViewModel(models.ResourceLimits{CPUPercent: 50, MemoryMiB: 512, DiskMiB: 1024}, nil)
	ch := OpenChannel(transport, vm.ApplySnapshot)
	defer ch.Close()

	vm.SetStatus(models.StatusRunning)
	transport.deliver(constants.EventStats, `{"memory_bytes":1048576,"cpu_absolute":12.345,"disk_bytes":2000000000,"uptime":5000}`)
	before := vm.Model()

	transport.deliver(constants.EventStats, `{"memory_bytes":99999999999,"cpu_`)
	if after := vm.Model(); !reflect.DeepEqual(before, after) {
		t.Fatalf("display model changed on malformed payload:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestChannelCloseReleasesSubscriptions(t *testing.T) {
	transport := newFakeTransport()
	calls := 0
	ch := OpenChannel(transport, func(models.ResourceSnapshot) { calls++ })
	ch.Close()

	transport.connect()
	transport.deliver(constants.EventStats, `{"memory_bytes":1,"cpu_absolute":2,"disk_bytes":3}`)

	if len(transport.sent) != 0 {
		t.Fatalf("no request should be sent after Close, got %v", transport.sent)
	}
	if calls != 0 {
		t.Fatalf("no snapshot should be delivered after Close, got %d", calls)
	}
}

func TestEndToEndDisplayPipeline(t *testing.T) {
	transport := newFakeTransport()
	vm := NewViewModel(
		models.ResourceLimits{CPUPercent: 50, MemoryMiB: 512, DiskMiB: 1024},
		[]models.Allocation{{IP: "10.0.0.2", Port: 25566, Alias: "play", IsDefault: true}},
	)
	ch := OpenChannel(transport, vm.ApplySnapshot)
	defer ch.Close()

	transport.connect()
	if len(transport.sent) != 1 {
		t.Fatalf("expected exactly one stats request on connect, got %v", transport.sent)
	}

	vm.SetStatus(models.StatusRunning)
	transport.deliver(constants.EventStats, `{"memory_bytes":1048576,"cpu_absolute":12.345,"disk_bytes":2000000000,"uptime":5000}`)

	model := vm.Model()
	if model.CPU.Text != "12.35% / 50%" {
		t.Errorf("CPU text = %q", model.CPU.Text)
	}
	if model.Memory.Text != "1.00 MiB / 512.00 MiB" {
		t.Errorf("memory text = %q", model.Memory.Text)
	}
	if model.Disk.Text != "1.86 GiB" {
		t.Errorf("disk text = %q", model.Disk.Text)
	}
	if model.Uptime != "00:00:05" {
		t.Errorf("uptime text = %q", model.Uptime)
	}
	if model.Address != "play:25566" {
		t.Errorf("address text = %q", model.Address)
	}
}

package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/dashpanel/internal/ui/messages"
)

// Sender delivers messages into the running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Watch is one panel to poll. Check returns how many items on the first
// page are not loaded locally.
type Watch struct {
	Panel string
	Check func(ctx context.Context) (int, error)
}

// Monitor polls every watched panel for new items in the background.
type Monitor struct {
	interval time.Duration
	watches  []Watch

	mu      sync.Mutex
	sender  Sender
	last    map[string]int
	stopCh  chan struct{}
	running bool
}

// New creates a new background monitor.
func New(interval time.Duration, watches ...Watch) *Monitor {
	return &Monitor{
		interval: interval,
		watches:  watches,
		last:     make(map[string]int),
	}
}

// Start begins the background polling loop. Calling Start while running
// is a no-op.
func (m *Monitor) Start(sender Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running || m.interval <= 0 {
		return
	}
	m.sender = sender
	m.stopCh = make(chan struct{})
	m.running = true
	go m.loop(m.stopCh)
}

// Stop halts the background polling.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stopCh)
	m.running = false
}

// Reset forgets the last reported counts so the next poll reports again.
func (m *Monitor) Reset(panel string) {
	m.mu.Lock()
	delete(m.last, panel)
	m.mu.Unlock()
}

func (m *Monitor) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				select {
				case <-stop:
					cancel()
				case <-ctx.Done():
				}
			}()
			m.Poll(ctx)
			cancel()
		}
	}
}

// Poll checks every watch once, concurrently, and sends a NewItemsMsg for
// each panel whose count changed since the last poll.
func (m *Monitor) Poll(ctx context.Context) {
	counts := make([]int, len(m.watches))
	ok := make([]bool, len(m.watches))

	g, ctx := errgroup.WithContext(ctx)
	for i, w := range m.watches {
		g.Go(func() error {
			n, err := w.Check(ctx)
			if err != nil {
				// Non-fatal: unauthorized panels and flaky servers skip a round.
				log.Printf("monitor: %s: %v", w.Panel, err)
				return nil
			}
			counts[i], ok[i] = n, true
			return nil
		})
	}
	g.Wait()

	m.mu.Lock()
	sender := m.sender
	var changed []messages.NewItemsMsg
	for i, w := range m.watches {
		if !ok[i] {
			continue
		}
		if prev, seen := m.last[w.Panel]; seen && prev == counts[i] {
			continue
		}
		m.last[w.Panel] = counts[i]
		changed = append(changed, messages.NewItemsMsg{Panel: w.Panel, Count: counts[i]})
	}
	m.mu.Unlock()

	if sender == nil {
		return
	}
	for _, msg := range changed {
		sender.Send(msg)
	}
}

package event

import (
	"go.uber.org/zap"
	"sync"
)

const listenerBuffer = 256

type Listener struct {
	eventTypes map[Type]bool
	channel    chan interface{}
}

// Manager delivers emitted events to listeners. Each listener receives its events in emit order
// on its own goroutine.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
	wg        sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) {
	m.AddListener(callback, eventType)
}

// AddListener registers one listener for several event types. Its events arrive in emit order
// whatever their type.
func (m *Manager) AddListener(callback func(msg interface{}), eventTypes ...Type) {
	listener := Listener{
		eventTypes: make(map[Type]bool, len(eventTypes)),
		channel:    make(chan interface{}, listenerBuffer),
	}
	for _, eventType := range eventTypes {
		zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")
		listener.eventTypes[eventType] = true
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, &listener)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.listeners) == 0 {
		zap.L().Debug("EventManager: No event listeners available")
	}
	for _, listener := range m.listeners {
		if listener.eventTypes[eventType] {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			listener.channel <- msg
		}
	}
}

// Close stops accepting events and waits for listeners to drain what was already emitted.
func (m *Manager) Close() {
	m.mu.Lock()
	for _, listener := range m.listeners {
		close(listener.channel)
	}
	m.listeners = nil
	m.mu.Unlock()

	m.wg.Wait()
}

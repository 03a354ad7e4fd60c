package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// RootLoggerName is the name reported for the root of the hierarchy.
const RootLoggerName = "root"

// node is one logger in the dotted-name tree. Levels and sinks are fixed once
// the hierarchy is built; nodes created later for unconfigured names only
// inherit.
type node struct {
	name       string
	level      Level
	effective  Level
	sinks      []*Sink
	propagate  bool
	configured bool
	parent     *node
	children   map[string]*node

	// route is the ordered, de-duplicated set of sinks a record emitted here
	// may reach: own sinks, then ancestors' while propagation allows.
	route []*Sink
}

type hierarchy struct {
	root  *node
	nodes map[string]*node
	mu    sync.RWMutex
}

func newHierarchy() *hierarchy {
	root := &node{
		name:       RootLoggerName,
		level:      LevelDebug,
		propagate:  true,
		configured: true,
		children:   make(map[string]*node),
	}
	return &hierarchy{
		root:  root,
		nodes: map[string]*node{RootLoggerName: root},
	}
}

// ensure returns the node for name, creating it and any missing ancestors.
// Callers hold h.mu.
func (h *hierarchy) ensure(name string) *node {
	if n, ok := h.nodes[name]; ok {
		return n
	}

	parent := h.root
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		parent = h.ensure(name[:i])
	}

	n := &node{
		name:      name,
		propagate: true,
		parent:    parent,
		children:  make(map[string]*node),
		effective: parent.effective,
		route:     parent.route,
	}
	parent.children[name] = n
	h.nodes[name] = n
	return n
}

// resolve computes effective levels and routes top-down.
func (h *hierarchy) resolve() {
	var walk func(n *node)
	walk = func(n *node) {
		n.effective = n.level
		if n.effective == LevelNotSet && n.parent != nil {
			n.effective = n.parent.effective
		}

		seen := make(map[*Sink]bool, len(n.sinks))
		route := make([]*Sink, 0, len(n.sinks))
		for _, s := range n.sinks {
			if !seen[s] {
				seen[s] = true
				route = append(route, s)
			}
		}
		if n.propagate && n.parent != nil {
			for _, s := range n.parent.route {
				if !seen[s] {
					seen[s] = true
					route = append(route, s)
				}
			}
		}
		n.route = route

		for _, child := range n.children {
			walk(child)
		}
	}
	walk(h.root)
}

// lookup returns the node for name, creating an inheriting placeholder for
// unconfigured names.
func (h *hierarchy) lookup(name string) *node {
	if name == "" || name == RootLoggerName {
		return h.root
	}

	h.mu.RLock()
	n, ok := h.nodes[name]
	h.mu.RUnlock()
	if ok {
		return n
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ensure(name)
}

// nearestConfigured returns the closest configured ancestor of n (or n).
func (n *node) nearestConfigured() *node {
	for c := n; c != nil; c = c.parent {
		if c.configured {
			return c
		}
	}
	return nil
}

// dispatchHook routes records from one logger's logrus instance to sinks.
type dispatchHook struct {
	node    *node
	manager *Manager
}

func (h *dispatchHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *dispatchHook) Fire(entry *logrus.Entry) error {
	level := levelFromLogrus(entry.Level)
	if level < h.node.effective {
		return nil
	}

	record := entry.WithField(LoggerNameKey, h.node.name)
	record.Level = entry.Level
	record.Message = entry.Message
	record.Caller = entry.Caller

	h.manager.track(h.node.name, level)

	if len(h.node.route) == 0 {
		if level >= LevelWarning {
			h.manager.emit(h.manager.lastResort, record)
		}
		return nil
	}

	for _, s := range h.node.route {
		if s.Accepts(level) {
			h.manager.emit(s, record)
		}
	}
	return nil
}

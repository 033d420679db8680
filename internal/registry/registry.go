package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/dyike/CortexHedge/models"
)

var ErrUnknownAnalyst = errors.New("unknown analyst")

// Descriptor is one analyst entry.
type Descriptor struct {
	Key            string
	DisplayName    string
	Description    string
	InvestingStyle string
	Type           string
	Order          int
	New            agents.Factory
}

// Node binds an analyst to its graph node.
type Node struct {
	NodeName string
	New      agents.Factory
}

// OrderEntry is one (display name, key) pair in presentation order.
type OrderEntry struct {
	DisplayName string
	Key         string
}

// Registry is immutable after New. All views are recomputed per call.
type Registry struct {
	entries []Descriptor
	byKey   map[string]int
	swarms  []models.SwarmInfo
}

// New validates the table. Insertion order breaks ties in Order.
func New(entries []Descriptor, swarms []models.SwarmInfo) (*Registry, error) {
	r := &Registry{
		entries: make([]Descriptor, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	for _, d := range entries {
		switch {
		case d.Key == "":
			return nil, errors.New("analyst key is empty")
		case r.has(d.Key):
			return nil, fmt.Errorf("duplicate analyst key %q", d.Key)
		case d.New == nil:
			return nil, fmt.Errorf("analyst %q has no agent factory", d.Key)
		case d.Type != consts.AnalystType:
			return nil, fmt.Errorf("analyst %q has type %q", d.Key, d.Type)
		}
		if got := d.New(nil).Key(); got != d.Key {
			return nil, fmt.Errorf("analyst %q is bound to agent %q", d.Key, got)
		}
		r.byKey[d.Key] = len(r.entries)
		r.entries = append(r.entries, d)
	}

	seen := make(map[string]bool, len(swarms))
	for _, s := range swarms {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate swarm %q", s.Name)
		}
		seen[s.Name] = true
		for _, k := range s.Agents {
			if !r.has(k) {
				return nil, fmt.Errorf("swarm %q: %w %q", s.Name, ErrUnknownAnalyst, k)
			}
		}
		r.swarms = append(r.swarms, models.SwarmInfo{Name: s.Name, Agents: append([]string(nil), s.Agents...)})
	}
	return r, nil
}

func (r *Registry) has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

func (r *Registry) Len() int { return len(r.entries) }

func (r *Registry) Get(key string) (Descriptor, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, false
	}
	return r.entries[i], true
}

// sorted returns the entries by ascending Order, stable on insertion.
func (r *Registry) sorted() []Descriptor {
	out := append([]Descriptor(nil), r.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (r *Registry) Keys() []string {
	sorted := r.sorted()
	keys := make([]string, len(sorted))
	for i, d := range sorted {
		keys[i] = d.Key
	}
	return keys
}

func (r *Registry) AgentsList() []models.AgentInfo {
	sorted := r.sorted()
	out := make([]models.AgentInfo, len(sorted))
	for i, d := range sorted {
		out[i] = models.AgentInfo{
			Key:            d.Key,
			DisplayName:    d.DisplayName,
			Description:    d.Description,
			InvestingStyle: d.InvestingStyle,
			Order:          d.Order,
		}
	}
	return out
}

func (r *Registry) AnalystOrder() []OrderEntry {
	sorted := r.sorted()
	out := make([]OrderEntry, len(sorted))
	for i, d := range sorted {
		out[i] = OrderEntry{DisplayName: d.DisplayName, Key: d.Key}
	}
	return out
}

func (r *Registry) AnalystNodes() map[string]Node {
	out := make(map[string]Node, len(r.entries))
	for _, d := range r.entries {
		out[d.Key] = Node{NodeName: NodeName(d.Key), New: d.New}
	}
	return out
}

func (r *Registry) Swarms() []models.SwarmInfo {
	out := make([]models.SwarmInfo, len(r.swarms))
	for i, s := range r.swarms {
		out[i] = models.SwarmInfo{Name: s.Name, Agents: append([]string(nil), s.Agents...)}
	}
	return out
}

func (r *Registry) Swarm(name string) (models.SwarmInfo, bool) {
	for _, s := range r.swarms {
		if s.Name == name {
			return models.SwarmInfo{Name: s.Name, Agents: append([]string(nil), s.Agents...)}, true
		}
	}
	return models.SwarmInfo{}, false
}

// Resolve checks keys against the registry, dedupes them and returns them
// in presentation order.
func (r *Registry) Resolve(keys []string) ([]string, error) {
	want := make(map[string]bool, len(keys))
	var unknown []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !r.has(k) {
			unknown = append(unknown, k)
			continue
		}
		want[k] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAnalyst, strings.Join(unknown, ", "))
	}
	if len(want) == 0 {
		return nil, errors.New("no analysts selected")
	}

	out := make([]string, 0, len(want))
	for _, k := range r.Keys() {
		if want[k] {
			out = append(out, k)
		}
	}
	return out, nil
}

// KeyForNode maps a flow node id to a registry key. An id that already is a
// key wins over suffix stripping, so ben_graham stays ben_graham.
func (r *Registry) KeyForNode(nodeID string) (string, bool) {
	if r.has(nodeID) {
		return nodeID, true
	}
	key := BaseAgentKey(nodeID)
	return key, r.has(key)
}

// NodeName is the graph node an analyst key runs as.
func NodeName(key string) string {
	return key + consts.AgentNodeSuffix
}

var nodeSuffix = regexp.MustCompile(`_[a-z0-9]{6}$`)

// BaseAgentKey strips the random suffix the frontend appends to node ids.
func BaseAgentKey(nodeID string) string {
	return nodeSuffix.ReplaceAllString(nodeID, "")
}

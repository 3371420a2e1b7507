package agent

import (
	"encoding/json"
	"sync"
)

// DebateConfig is everything needed to run one debate agent. It is created
// when a join request is accepted and lives exactly as long as the registry
// entry for its room.
type DebateConfig struct {
	Room          string `json:"room"`
	Token         string `json:"token"`
	LivekitURL    string `json:"livekitUrl"`
	Persona       string `json:"persona"`
	Topic         string `json:"topic"`
	Stance        string `json:"stance"`
	TurnDuration  int    `json:"turnDuration"`
	NumberOfTurns int    `json:"numberOfTurns"`
}

// Entry marshals as a [room, config] pair, the shape the /agents endpoint
// has always returned.
type Entry struct {
	Room   string
	Config *DebateConfig
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Room, e.Config})
}

// Registry tracks at most one agent config per room name.
type Registry struct {
	sync.Mutex

	configs map[string]*DebateConfig
}

// TryRegister inserts the config and reports true, or reports false without
// mutating anything when the room is already tracked.
func (r *Registry) TryRegister(room string, config *DebateConfig) bool {
	r.Lock()
	defer r.Unlock()

	if _, exist := r.configs[room]; exist {
		return false
	}
	r.configs[room] = config
	return true
}

// Unregister is idempotent; removing an absent room is not an error.
func (r *Registry) Unregister(room string) {
	r.Lock()
	defer r.Unlock()
	delete(r.configs, room)
}

func (r *Registry) Has(room string) bool {
	r.Lock()
	defer r.Unlock()
	_, exist := r.configs[room]
	return exist
}

func (r *Registry) List() []Entry {
	r.Lock()
	defer r.Unlock()

	result := make([]Entry, 0, len(r.configs))
	for room, config := range r.configs {
		result = append(result, Entry{Room: room, Config: config})
	}
	return result
}

func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.configs)
}

func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]*DebateConfig),
	}
}

package domain

// Machine is one entry of the static machine registry.
type Machine struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

type MachineInfo struct {
	DisplayName string `json:"display_name"`
}

// MachineRegistry resolves display names; unknown ids fall back to the raw id.
type MachineRegistry struct {
	ids   []string
	names map[string]string
}

func NewMachineRegistry(machines []Machine) *MachineRegistry {
	r := &MachineRegistry{names: make(map[string]string, len(machines))}
	for _, m := range machines {
		if m.ID == "" {
			continue
		}
		if _, dup := r.names[m.ID]; dup {
			continue
		}
		r.ids = append(r.ids, m.ID)
		r.names[m.ID] = m.DisplayName
	}
	return r
}

// IDs returns the registered machines in registration order.
func (r *MachineRegistry) IDs() []string {
	return append([]string(nil), r.ids...)
}

func (r *MachineRegistry) DisplayName(id string) string {
	if name := r.names[id]; name != "" {
		return name
	}
	return id
}

func (r *MachineRegistry) Info() map[string]MachineInfo {
	out := make(map[string]MachineInfo, len(r.ids))
	for _, id := range r.ids {
		out[id] = MachineInfo{DisplayName: r.DisplayName(id)}
	}
	return out
}

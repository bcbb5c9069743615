// Package models defines the records exchanged with the pipeline metadata store.
package models

// Pipeline is a decoded pipeline definition. It is deliberately map-backed:
// this service only understands a handful of fields, and everything else must
// survive a save round-trip untouched.
type Pipeline map[string]any

// ID returns the pipeline's identifier, or "" when the definition carries none.
func (p Pipeline) ID() string {
	id, _ := p["id"].(string)
	return id
}

// EnsureID backfills the id when the definition does not carry one.
func (p Pipeline) EnsureID(id string) {
	if _, ok := p["id"]; !ok {
		p["id"] = id
	}
}

// ServiceAccount returns the explicit service account override and whether the
// field is present.
func (p Pipeline) ServiceAccount() (string, bool) {
	v, ok := p["serviceAccount"]
	if !ok {
		return "", false
	}
	name, _ := v.(string)
	return name, true
}

// Roles returns the requested role names and whether the roles field is
// present at all. Absence and an empty list mean different things: absence
// means no managed service account is wanted.
func (p Pipeline) Roles() ([]string, bool) {
	v, ok := p["roles"]
	if !ok {
		return nil, false
	}
	return toStringSlice(v), true
}

// Triggers returns the pipeline's trigger records. The returned maps alias the
// underlying definition, so mutations are reflected when the pipeline is saved.
func (p Pipeline) Triggers() []map[string]any {
	switch v := p["triggers"].(type) {
	case []map[string]any:
		return v
	case []any:
		triggers := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if trigger, ok := item.(map[string]any); ok {
				triggers = append(triggers, trigger)
			}
		}
		return triggers
	default:
		return nil
	}
}

func toStringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ServiceAccount is a scoped identity owned by a pipeline. Saving an account
// under an existing name overwrites it, so creates and updates are the same
// operation.
type ServiceAccount struct {
	Name     string   `json:"name"`
	MemberOf []string `json:"memberOf"`
}

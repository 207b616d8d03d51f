// Package correlate joins resources from different Argo CD listings by
// identity (group, kind, namespace, name).
package correlate

import (
	"github.com/phin3has/argodash/internal/argocd"
)

const Unknown = "Unknown"

// Key is the composite identity of a resource. An absent namespace or
// group is the empty string, so cluster-scoped and core resources match
// whichever way the API spelled them.
type Key struct {
	Group     string
	Kind      string
	Namespace string
	Name      string
}

func KeyOf(group, kind, namespace, name string) Key {
	return Key{Group: group, Kind: kind, Namespace: namespace, Name: name}
}

// KeyOfRef ignores version and UID, which only one side carries.
func KeyOfRef(r argocd.ResourceRef) Key {
	return KeyOf(r.Group, r.Kind, r.Namespace, r.Name)
}

func KeyOfStatus(s argocd.ResourceStatus) Key {
	return KeyOf(s.Group, s.Kind, s.Namespace, s.Name)
}

func KeyOfManaged(r argocd.ManagedResource) Key {
	return KeyOf(r.Group, r.Kind, r.Namespace, r.Name)
}

// Find scans statuses for key. The first match wins; no match means the
// status is unknown, which is not an error.
func Find(statuses []argocd.ResourceStatus, key Key) (*argocd.ResourceStatus, bool) {
	for i := range statuses {
		if KeyOfStatus(statuses[i]) == key {
			return &statuses[i], true
		}
	}
	return nil, false
}

// Index is Find precomputed for one fetch. Duplicate keys keep the first
// entry, like Find.
type Index map[Key]*argocd.ResourceStatus

func NewIndex(statuses []argocd.ResourceStatus) Index {
	idx := make(Index, len(statuses))
	for i := range statuses {
		k := KeyOfStatus(statuses[i])
		if _, dup := idx[k]; dup {
			continue
		}
		idx[k] = &statuses[i]
	}
	return idx
}

func (idx Index) Lookup(key Key) (*argocd.ResourceStatus, bool) {
	s, ok := idx[key]
	return s, ok
}

// Badge is the pair of labels shown next to a resource.
type Badge struct {
	Sync   string
	Health string
}

// BadgeFor turns an optional status into labels. Missing values read as
// Unknown. Resources without health checks (ConfigMaps, Secrets) keep an
// empty health.
func BadgeFor(s *argocd.ResourceStatus) Badge {
	if s == nil {
		return Badge{Sync: Unknown, Health: Unknown}
	}
	b := Badge{Sync: s.Status, Health: s.Health}
	if b.Sync == "" {
		b.Sync = Unknown
	}
	return b
}

// Package normalize turns Argo CD resource states into text that diffs well.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v2"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/phin3has/argodash/internal/argocd"
)

const lastAppliedAnnotation = "kubectl.kubernetes.io/last-applied-configuration"

func init() {
	// Wrapped lines shift the word diff between panes.
	yaml.FutureLineWrap()
}

// Options controls how Pair prepares the two sides of a diff.
type Options struct {
	// StripRuntimeFields removes cluster-injected metadata from raw live
	// state when the server did not send a normalized copy.
	StripRuntimeFields bool
}

func DefaultOptions() Options {
	return Options{StripRuntimeFields: true}
}

// JSONToYAML renders a JSON document as YAML with two-space indent and no
// line wrapping. Object keys keep their input order, so the same input
// always yields the same output. Anything that is not valid JSON, the
// empty string included, is returned unchanged.
func JSONToYAML(s string) string {
	if !json.Valid([]byte(s)) {
		return s
	}
	v, err := decodeOrdered(s)
	if err != nil {
		return s
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return s
	}
	return string(out)
}

// decodeOrdered walks the JSON token stream into yaml.MapSlice so key order
// survives. Integers keep every digit up to uint64; other numbers go
// through float64.
func decodeOrdered(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := yaml.MapSlice{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.New("object key is not a string")
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m = append(m, yaml.MapItem{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, errors.New("unexpected delimiter")
	case json.Number:
		if _, err := t.Int64(); err != nil {
			if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
				return u, nil
			}
		}
		return t, nil
	default:
		return t, nil
	}
}

// LiveSource picks the live state to diff, preferring the server-side
// normalized copy over the raw cluster object.
func LiveSource(r argocd.ManagedResource) string {
	if isEmptyState(r.NormalizedLiveState) {
		return r.LiveState
	}
	return r.NormalizedLiveState
}

// Pair returns the live and target YAML blocks for one resource. A state
// the server reports as JSON null is treated as absent.
func Pair(r argocd.ManagedResource, opts Options) (live, target string) {
	liveJSON := LiveSource(r)
	targetJSON := r.TargetState
	if isEmptyState(liveJSON) {
		liveJSON = ""
	}
	if isEmptyState(targetJSON) {
		targetJSON = ""
	}

	if opts.StripRuntimeFields && isEmptyState(r.NormalizedLiveState) && liveJSON != "" {
		if stripped, ok := stripRuntimeFields(liveJSON); ok {
			liveJSON = stripped
			// Stripping re-encodes with sorted keys; sort the target too so
			// ordering alone never shows up as drift.
			if canon, ok := canonicalJSON(targetJSON); ok {
				targetJSON = canon
			}
		}
	}
	return JSONToYAML(liveJSON), JSONToYAML(targetJSON)
}

func isEmptyState(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "null"
}

// StripRuntimeFields removes fields the cluster adds to every object:
// resourceVersion, uid, generation, creationTimestamp, managedFields,
// selfLink, the status subresource and the last-applied annotation.
// Input that is not a JSON object is returned unchanged.
func StripRuntimeFields(s string) string {
	out, ok := stripRuntimeFields(s)
	if !ok {
		return s
	}
	return out
}

func stripRuntimeFields(s string) (string, bool) {
	obj, ok := decodeObject(s)
	if !ok {
		return "", false
	}
	u := unstructured.Unstructured{Object: obj}
	u.SetResourceVersion("")
	u.SetUID("")
	u.SetGeneration(0)
	u.SetCreationTimestamp(metav1.Time{})
	u.SetManagedFields(nil)
	u.SetSelfLink("")
	unstructured.RemoveNestedField(u.Object, "status")

	if ann := u.GetAnnotations(); ann != nil {
		delete(ann, lastAppliedAnnotation)
		if len(ann) == 0 {
			ann = nil
		}
		u.SetAnnotations(ann)
	}
	if md, ok := u.Object["metadata"].(map[string]any); ok && len(md) == 0 {
		unstructured.RemoveNestedField(u.Object, "metadata")
	}

	b, err := json.Marshal(u.Object)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func canonicalJSON(s string) (string, bool) {
	obj, ok := decodeObject(s)
	if !ok {
		return "", false
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

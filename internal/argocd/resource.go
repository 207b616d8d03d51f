package argocd

import (
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceRef identifies a specific resource instance in an application.
// It is used for endpoints that require group/kind/version/name/namespace.
type ResourceRef struct {
	Group     string
	Version   string
	Kind      string
	Namespace string
	Name      string
	UID       string
}

func (r ResourceRef) GroupKind() schema.GroupKind {
	return schema.GroupKind{Group: r.Group, Kind: r.Kind}
}

// String renders group/kind/name with the namespace in parentheses.
func (r ResourceRef) String() string {
	s := r.GroupKind().String() + "/" + r.Name
	if r.Namespace != "" {
		s += " (" + r.Namespace + ")"
	}
	return s
}

// ResourceStatus is one entry of an application's status.resources.
type ResourceStatus struct {
	Group           string
	Version         string
	Kind            string
	Namespace       string
	Name            string
	Status          string // Synced, OutOfSync, or empty
	Health          string
	HealthMessage   string
	Hook            bool
	RequiresPruning bool
}

func (r ResourceStatus) Ref() ResourceRef {
	return ResourceRef{Group: r.Group, Version: r.Version, Kind: r.Kind, Namespace: r.Namespace, Name: r.Name}
}

// ManagedResource holds the live and target state of one resource as
// returned by /managed-resources. All states are JSON strings.
type ManagedResource struct {
	Group     string
	Kind      string
	Namespace string
	Name      string

	LiveState           string
	NormalizedLiveState string
	TargetState         string
	PredictedLiveState  string

	Hook bool
}

func (r ManagedResource) Ref() ResourceRef {
	return ResourceRef{Group: r.Group, Kind: r.Kind, Namespace: r.Namespace, Name: r.Name}
}

// ResourceNode is a node of the application resource tree.
type ResourceNode struct {
	ResourceRef
	ParentRefs      []ResourceRef
	Health          string
	HealthMessage   string
	Images          []string
	Info            []InfoItem
	ResourceVersion string
	CreatedAt       time.Time
}

type InfoItem struct {
	Name  string
	Value string
}

type ResourceTree struct {
	Nodes         []ResourceNode
	OrphanedNodes []ResourceNode
}

// OperationPhase mirrors the phases Argo CD reports in status.operationState.
type OperationPhase string

const (
	OperationRunning     OperationPhase = "Running"
	OperationTerminating OperationPhase = "Terminating"
	OperationFailed      OperationPhase = "Failed"
	OperationError       OperationPhase = "Error"
	OperationSucceeded   OperationPhase = "Succeeded"
)

// Completed reports whether the phase is terminal.
func (p OperationPhase) Completed() bool {
	switch p {
	case OperationFailed, OperationError, OperationSucceeded:
		return true
	}
	return false
}

type OperationState struct {
	Phase      OperationPhase
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Operation  Operation
	SyncResult *SyncResult
}

type Operation struct {
	Sync        *SyncOperation
	InitiatedBy Initiator
}

type SyncOperation struct {
	Revision string
	Prune    bool
	DryRun   bool
}

type SyncResult struct {
	Revision  string
	Resources []ResourceResult
}

// ResourceResult is the per-resource outcome of a sync operation.
type ResourceResult struct {
	Group     string
	Kind      string
	Namespace string
	Name      string
	Status    string // Synced, SyncFailed, Pruned, PruneSkipped
	Message   string
	HookPhase string
	SyncPhase string
}

type Initiator struct {
	Username  string
	Automated bool
}

func (i Initiator) String() string {
	switch {
	case i.Automated:
		return "automated sync policy"
	case i.Username != "":
		return i.Username
	default:
		return "unknown"
	}
}

// RevisionHistory is one past deployment.
type RevisionHistory struct {
	ID              int64
	Revision        string
	DeployedAt      time.Time
	DeployStartedAt *time.Time
	InitiatedBy     Initiator
	Source          string // repo URL of the deployed source
}

type AppCondition struct {
	Type    string
	Message string
}

type RevisionMeta struct {
	Author  string
	Date    time.Time
	Tags    []string
	Message string
}

// ChartMeta describes a Helm chart version.
type ChartMeta struct {
	Description string
	Maintainers []string
	Home        string
}

type Event struct {
	Type           string
	Reason         string
	Message        string
	Count          int32
	Timestamp      time.Time
	InvolvedObject string
}

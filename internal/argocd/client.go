package argocd

import "context"

// Application is the slice of an Argo CD application the console renders.
// Expand as the UI needs more information.
type Application struct {
	Name      string
	Namespace string // destination namespace
	Project   string
	Health    string // e.g. Healthy, Degraded
	Sync      string // e.g. Synced, OutOfSync
	RepoURL   string
	Path      string
	Chart     string // set for Helm repository sources
	Revision  string // spec.source.targetRevision
	Cluster   string

	// SyncedRevision is the revision the app was last compared against.
	SyncedRevision string

	Resources      []ResourceStatus
	History        []RevisionHistory // newest first
	OperationState *OperationState
	Conditions     []AppCondition
}

// CurrentRevision returns the most recent deployment, if any.
func (a Application) CurrentRevision() (RevisionHistory, bool) {
	if len(a.History) == 0 {
		return RevisionHistory{}, false
	}
	return a.History[0], true
}

// Invalidator is implemented by clients that cache list reads.
type Invalidator interface {
	InvalidateApplications()
}

// SyncOptions controls a sync request.
type SyncOptions struct {
	DryRun   bool
	Prune    bool
	Revision string
}

// AppClient covers the application endpoints.
//
// Keep it narrow: the UI shouldn't know about transport/proto details.
type AppClient interface {
	ListApplications(ctx context.Context) ([]Application, error)
	GetApplication(ctx context.Context, name string) (Application, error)
	RefreshApplication(ctx context.Context, name string, hard bool) (Application, error)
	ResourceTree(ctx context.Context, name string) (ResourceTree, error)
	ManagedResources(ctx context.Context, name string) ([]ManagedResource, error)
	GetResource(ctx context.Context, name string, ref ResourceRef) (string, error)
	GetManifests(ctx context.Context, name string) ([]string, error)
	ListEvents(ctx context.Context, name string, ref *ResourceRef) ([]Event, error)
	RevisionMetadata(ctx context.Context, name, revision string) (RevisionMeta, error)
	ChartDetails(ctx context.Context, name, revision string) (ChartMeta, error)

	SyncApplication(ctx context.Context, name string, opts SyncOptions) error
	RollbackApplication(ctx context.Context, name string, id int64, prune bool) error
	TerminateOperation(ctx context.Context, name string) error
	DeleteApplication(ctx context.Context, name string, cascade bool) error
}

// SettingsClient covers the cluster/repo/project/cert/gpg endpoints.
type SettingsClient interface {
	ListClusters(ctx context.Context) ([]Cluster, error)
	CreateCluster(ctx context.Context, c Cluster) error
	DeleteCluster(ctx context.Context, server string) error

	ListRepositories(ctx context.Context) ([]Repository, error)
	CreateRepository(ctx context.Context, r Repository) error
	DeleteRepository(ctx context.Context, repo string) error

	ListProjects(ctx context.Context) ([]Project, error)
	CreateProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, name string) error

	ListCertificates(ctx context.Context) ([]Certificate, error)
	CreateCertificate(ctx context.Context, c Certificate) error
	DeleteCertificate(ctx context.Context, c Certificate) error

	ListGPGKeys(ctx context.Context) ([]GPGKey, error)
	CreateGPGKey(ctx context.Context, keyData string) error
	DeleteGPGKey(ctx context.Context, keyID string) error

	Settings(ctx context.Context) (Settings, error)
}

// SessionClient covers login and account lookups.
type SessionClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	UserInfo(ctx context.Context) (UserInfo, error)
}

// Client is the interface the UI depends on.
type Client interface {
	AppClient
	SettingsClient
	SessionClient
}

package argocd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockClient serves canned data for --mock and for tests. A real sync
// starts a Running operation that converges one resource per refresh.
type MockClient struct {
	mu sync.Mutex

	apps     []Application
	managed  map[string][]ManagedResource
	clusters []Cluster
	repos    []Repository
	projects []Project
	certs    []Certificate
	gpgKeys  []GPGKey

	now func() time.Time
}

func NewMockClient() *MockClient {
	deployed := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	started := deployed.Add(-42 * time.Second)

	history := func(revs ...string) []RevisionHistory {
		out := make([]RevisionHistory, 0, len(revs))
		for i, r := range revs {
			at := deployed.Add(-time.Duration(i) * 26 * time.Hour)
			st := started.Add(-time.Duration(i) * 26 * time.Hour)
			out = append(out, RevisionHistory{
				ID:              int64(len(revs) - i),
				Revision:        r,
				DeployedAt:      at,
				DeployStartedAt: &st,
				InitiatedBy:     Initiator{Username: "admin"},
				Source:          "https://github.com/example/platform",
			})
		}
		return out
	}

	m := &MockClient{now: time.Now}
	m.apps = []Application{
		{
			Name:      "payments-api",
			Namespace: "payments",
			Project:   "default",
			Health:    "Healthy",
			Sync:      "Synced",
			RepoURL:   "https://github.com/example/platform",
			Path:      "apps/payments",
			Revision:  "main",
			Cluster:   "https://kubernetes.default.svc",
			Resources: []ResourceStatus{
				{Group: "apps", Version: "v1", Kind: "Deployment", Name: "payments-api", Namespace: "payments", Status: "Synced", Health: "Healthy"},
				{Version: "v1", Kind: "Service", Name: "payments-api", Namespace: "payments", Status: "Synced", Health: "Healthy"},
				{Version: "v1", Kind: "ConfigMap", Name: "payments-config", Namespace: "payments", Status: "Synced"},
			},
			History: history("4f1c2a9e5b7d", "9b8a7c6d5e4f", "1a2b3c4d5e6f"),
		},
		{
			Name:      "web-frontend",
			Namespace: "web",
			Project:   "default",
			Health:    "Healthy",
			Sync:      "OutOfSync",
			RepoURL:   "https://github.com/example/platform",
			Path:      "apps/web",
			Revision:  "main",
			Cluster:   "https://kubernetes.default.svc",
			Resources: []ResourceStatus{
				{Group: "apps", Version: "v1", Kind: "Deployment", Name: "web-frontend", Namespace: "web", Status: "OutOfSync", Health: "Healthy"},
				{Version: "v1", Kind: "Service", Name: "web-frontend", Namespace: "web", Status: "Synced", Health: "Healthy"},
				{Group: "networking.k8s.io", Version: "v1", Kind: "Ingress", Name: "web", Namespace: "web", Status: "OutOfSync", Health: "Healthy"},
				{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "ClusterRole", Name: "web-reader", Status: "Synced"},
			},
			History: history("c0ffee123456", "deadbeef0001"),
		},
		{
			Name:      "observability",
			Namespace: "ops",
			Project:   "platform",
			Health:    "Degraded",
			Sync:      "Synced",
			RepoURL:   "https://grafana.github.io/helm-charts",
			Path:      "loki-stack",
			Chart:     "loki-stack",
			Revision:  "2.10.2",
			Cluster:   "https://kubernetes.default.svc",
			Resources: []ResourceStatus{
				{Group: "apps", Version: "v1", Kind: "StatefulSet", Name: "loki", Namespace: "ops", Status: "Synced", Health: "Degraded", HealthMessage: "0/1 replicas ready"},
				{Group: "apps", Version: "v1", Kind: "Deployment", Name: "grafana", Namespace: "ops", Status: "Synced", Health: "Healthy"},
				{Group: "batch", Version: "v1", Kind: "Job", Name: "migrate-dashboards", Namespace: "ops", Status: "Synced", Health: "Healthy", Hook: true},
			},
			History: history("2.10.2"),
		},
	}

	m.managed = map[string][]ManagedResource{
		"payments-api": {
			mockManaged("apps", "Deployment", "payments", "payments-api", `"image":"ghcr.io/example/payments:1.8.0"`, `"image":"ghcr.io/example/payments:1.8.0"`),
			mockManaged("", "Service", "payments", "payments-api", `"port":8080`, `"port":8080`),
		},
		"web-frontend": {
			mockManaged("apps", "Deployment", "web", "web-frontend", `"image":"ghcr.io/example/web:2.3.1"`, `"image":"ghcr.io/example/web:2.4.0"`),
			mockManaged("", "Service", "web", "web-frontend", `"port":80`, `"port":80`),
			mockManaged("networking.k8s.io", "Ingress", "web", "web", `"host":"web.example.com"`, `"host":"www.example.com"`),
			mockManaged("rbac.authorization.k8s.io", "ClusterRole", "", "web-reader", `"verbs":["get"]`, `"verbs":["get"]`),
		},
		"observability": {
			mockManaged("apps", "StatefulSet", "ops", "loki", `"replicas":1`, `"replicas":1`),
			mockManaged("apps", "Deployment", "ops", "grafana", `"replicas":1`, `"replicas":1`),
		},
	}

	m.clusters = []Cluster{{Name: "in-cluster", Server: "https://kubernetes.default.svc", ConnectionState: "Successful", ServerVersion: "1.31"}}
	m.repos = []Repository{
		{Repo: "https://github.com/example/platform", Type: "git", ConnectionState: "Successful"},
		{Repo: "https://github.com/example/ops", Type: "git", ConnectionState: "Successful"},
	}
	m.projects = []Project{
		{Name: "default", SourceRepos: []string{"*"}, Destinations: []ProjectDestination{{Server: "*", Namespace: "*"}}},
		{Name: "platform", Description: "cluster services", SourceRepos: []string{"https://github.com/example/ops"}},
	}
	m.certs = []Certificate{{ServerName: "github.com", CertType: "ssh", CertSubType: "ssh-ed25519", CertInfo: "SHA256:+DiY3wvvV6TuJJhbpZisF/zLDA0zPMSvHdkr4UvCOqU"}}
	m.gpgKeys = []GPGKey{{KeyID: "4AEE18F83AFDEB23", Owner: "GitHub (web-flow commit signing) <noreply@github.com>", Trust: "unknown", SubType: "rsa2048"}}
	return m
}

// mockManaged builds a resource whose live and target state differ only in
// the given spec fragments.
func mockManaged(group, kind, ns, name, liveSpec, targetSpec string) ManagedResource {
	apiVersion := "v1"
	if group != "" {
		apiVersion = group + "/v1"
	}
	meta := fmt.Sprintf(`"name":%q`, name)
	if ns != "" {
		meta += fmt.Sprintf(`,"namespace":%q`, ns)
	}
	obj := func(spec, extraMeta string) string {
		return fmt.Sprintf(`{"apiVersion":%q,"kind":%q,"metadata":{%s%s},"spec":{%s}}`, apiVersion, kind, meta, extraMeta, spec)
	}
	return ManagedResource{
		Group:               group,
		Kind:                kind,
		Namespace:           ns,
		Name:                name,
		LiveState:           obj(liveSpec, `,"resourceVersion":"81723","uid":"5b0e7d1c-0000-4000-8000-000000000001"`),
		NormalizedLiveState: obj(liveSpec, ""),
		TargetState:         obj(targetSpec, ""),
	}
}

func (m *MockClient) find(name string) (*Application, error) {
	for i := range m.apps {
		if m.apps[i].Name == name {
			return &m.apps[i], nil
		}
	}
	return nil, &APIError{Type: ErrNotFound, Status: 404, Message: fmt.Sprintf("application not found: %s", name)}
}

func (m *MockClient) ListApplications(ctx context.Context) ([]Application, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Application, len(m.apps))
	copy(out, m.apps)
	return out, nil
}

func (m *MockClient) GetApplication(ctx context.Context, name string) (Application, error) {
	return m.RefreshApplication(ctx, name, false)
}

// RefreshApplication advances a running operation by one resource.
func (m *MockClient) RefreshApplication(ctx context.Context, name string, hard bool) (Application, error) {
	_ = ctx
	_ = hard
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return Application{}, err
	}
	m.advance(a)
	out := *a
	out.Resources = append([]ResourceStatus(nil), a.Resources...)
	return out, nil
}

func (m *MockClient) advance(a *Application) {
	op := a.OperationState
	if op == nil || op.Phase != OperationRunning {
		return
	}
	for i := range a.Resources {
		if a.Resources[i].Status != "Synced" {
			a.Resources[i].Status = "Synced"
			a.Resources[i].Health = "Progressing"
			return
		}
	}
	finished := m.now()
	op.Phase = OperationSucceeded
	op.Message = "successfully synced (all tasks run)"
	op.FinishedAt = &finished
	a.Sync = "Synced"
	m.managed[a.Name] = convergeManaged(m.managed[a.Name])
}

func convergeManaged(in []ManagedResource) []ManagedResource {
	out := make([]ManagedResource, len(in))
	for i, r := range in {
		r.NormalizedLiveState = r.TargetState
		r.LiveState = r.TargetState
		out[i] = r
	}
	return out
}

func (m *MockClient) ResourceTree(ctx context.Context, name string) (ResourceTree, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return ResourceTree{}, err
	}
	var tree ResourceTree
	for _, r := range a.Resources {
		ref := r.Ref()
		ref.UID = "uid-" + strings.ToLower(r.Kind) + "-" + r.Name
		tree.Nodes = append(tree.Nodes, ResourceNode{ResourceRef: ref, Health: r.Health, HealthMessage: r.HealthMessage})
		if r.Kind != "Deployment" {
			continue
		}
		rs := ResourceRef{Group: "apps", Version: "v1", Kind: "ReplicaSet", Namespace: r.Namespace, Name: r.Name + "-7d9f8b6c5", UID: "uid-rs-" + r.Name}
		pod := ResourceRef{Version: "v1", Kind: "Pod", Namespace: r.Namespace, Name: r.Name + "-7d9f8b6c5-x2k4q", UID: "uid-pod-" + r.Name}
		tree.Nodes = append(tree.Nodes,
			ResourceNode{ResourceRef: rs, ParentRefs: []ResourceRef{ref}, Health: r.Health},
			ResourceNode{ResourceRef: pod, ParentRefs: []ResourceRef{rs}, Health: r.Health, Info: []InfoItem{{Name: "Status Reason", Value: "Running"}}},
		)
	}
	return tree, nil
}

func (m *MockClient) ManagedResources(ctx context.Context, name string) ([]ManagedResource, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.find(name); err != nil {
		return nil, err
	}
	return append([]ManagedResource(nil), m.managed[name]...), nil
}

func (m *MockClient) GetResource(ctx context.Context, name string, ref ResourceRef) (string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.managed[name] {
		if r.Kind == ref.Kind && r.Name == ref.Name && r.Namespace == ref.Namespace {
			return r.LiveState, nil
		}
	}
	return fmt.Sprintf(`{"apiVersion":"v1","kind":%q,"metadata":{"name":%q,"namespace":%q}}`, ref.Kind, ref.Name, ref.Namespace), nil
}

func (m *MockClient) GetManifests(ctx context.Context, name string) ([]string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.managed[name] {
		out = append(out, r.TargetState)
	}
	return out, nil
}

func (m *MockClient) ListEvents(ctx context.Context, name string, ref *ResourceRef) ([]Event, error) {
	_ = ctx
	obj := "Application/" + name
	if ref != nil {
		obj = ref.Kind + "/" + ref.Name
	}
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	return []Event{
		{Type: "Normal", Reason: "ResourceUpdated", Message: "Updated sync status: OutOfSync -> Synced", Count: 1, Timestamp: at, InvolvedObject: obj},
		{Type: "Normal", Reason: "OperationCompleted", Message: "Sync operation succeeded", Count: 1, Timestamp: at.Add(2 * time.Second), InvolvedObject: obj},
	}, nil
}

func (m *MockClient) RevisionMetadata(ctx context.Context, name, revision string) (RevisionMeta, error) {
	_ = ctx
	_ = name
	return RevisionMeta{
		Author:  "Jane Doe <jane@example.com>",
		Date:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		Tags:    []string{"release-" + revision[:min(len(revision), 6)]},
		Message: "bump image tags",
	}, nil
}

func (m *MockClient) ChartDetails(ctx context.Context, name, revision string) (ChartMeta, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return ChartMeta{}, err
	}
	if a.Chart == "" {
		return ChartMeta{}, &APIError{Type: ErrNotFound, Status: 404, Message: "no helm chart for " + name}
	}
	return ChartMeta{
		Description: a.Chart + " " + revision,
		Maintainers: []string{"Grafana Labs"},
		Home:        "https://grafana.com/oss/loki",
	}, nil
}

func (m *MockClient) SyncApplication(ctx context.Context, name string, opts SyncOptions) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}
	a.OperationState = &OperationState{
		Phase:     OperationRunning,
		Message:   "one or more tasks are running",
		StartedAt: m.now(),
		Operation: Operation{
			Sync:        &SyncOperation{Revision: opts.Revision, Prune: opts.Prune},
			InitiatedBy: Initiator{Username: "admin"},
		},
	}
	return nil
}

func (m *MockClient) RollbackApplication(ctx context.Context, name string, id int64, prune bool) error {
	_ = ctx
	_ = prune
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return err
	}
	for _, h := range a.History {
		if h.ID != id {
			continue
		}
		a.OperationState = &OperationState{
			Phase:     OperationRunning,
			StartedAt: m.now(),
			Operation: Operation{Sync: &SyncOperation{Revision: h.Revision}, InitiatedBy: Initiator{Username: "admin"}},
		}
		return nil
	}
	return &APIError{Type: ErrNotFound, Status: 404, Message: fmt.Sprintf("application %s has no history with id %d", name, id)}
}

func (m *MockClient) TerminateOperation(ctx context.Context, name string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.find(name)
	if err != nil {
		return err
	}
	if a.OperationState == nil || a.OperationState.Phase != OperationRunning {
		return &APIError{Type: ErrConflict, Status: 409, Message: "unable to terminate operation. No operation is in progress"}
	}
	finished := m.now()
	a.OperationState.Phase = OperationFailed
	a.OperationState.Message = "Operation terminated"
	a.OperationState.FinishedAt = &finished
	return nil
}

func (m *MockClient) DeleteApplication(ctx context.Context, name string, cascade bool) error {
	_ = ctx
	_ = cascade
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apps {
		if m.apps[i].Name == name {
			m.apps = append(m.apps[:i], m.apps[i+1:]...)
			delete(m.managed, name)
			return nil
		}
	}
	return &APIError{Type: ErrNotFound, Status: 404, Message: fmt.Sprintf("application not found: %s", name)}
}

func (m *MockClient) ListClusters(ctx context.Context) ([]Cluster, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Cluster(nil), m.clusters...), nil
}

func (m *MockClient) CreateCluster(ctx context.Context, c Cluster) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	c.BearerToken = ""
	c.ConnectionState = "Unknown"
	m.clusters = append(m.clusters, c)
	return nil
}

func (m *MockClient) DeleteCluster(ctx context.Context, server string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = removeWhere(m.clusters, func(c Cluster) bool { return c.Server == server })
	return nil
}

func (m *MockClient) ListRepositories(ctx context.Context) ([]Repository, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Repository(nil), m.repos...), nil
}

func (m *MockClient) CreateRepository(ctx context.Context, r Repository) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Password = ""
	m.repos = append(m.repos, r)
	return nil
}

func (m *MockClient) DeleteRepository(ctx context.Context, repo string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos = removeWhere(m.repos, func(r Repository) bool { return r.Repo == repo })
	return nil
}

func (m *MockClient) ListProjects(ctx context.Context) ([]Project, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Project(nil), m.projects...), nil
}

func (m *MockClient) CreateProject(ctx context.Context, p Project) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if existing.Name == p.Name {
			return &APIError{Type: ErrConflict, Status: 409, Message: fmt.Sprintf("project %s already exists", p.Name)}
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

func (m *MockClient) DeleteProject(ctx context.Context, name string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = removeWhere(m.projects, func(p Project) bool { return p.Name == name })
	return nil
}

func (m *MockClient) ListCertificates(ctx context.Context) ([]Certificate, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Certificate(nil), m.certs...), nil
}

func (m *MockClient) CreateCertificate(ctx context.Context, c Certificate) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.certs = append(m.certs, c)
	return nil
}

func (m *MockClient) DeleteCertificate(ctx context.Context, c Certificate) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.certs = removeWhere(m.certs, func(x Certificate) bool {
		return x.ServerName == c.ServerName && x.CertType == c.CertType && x.CertSubType == c.CertSubType
	})
	return nil
}

func (m *MockClient) ListGPGKeys(ctx context.Context) ([]GPGKey, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GPGKey(nil), m.gpgKeys...), nil
}

func (m *MockClient) CreateGPGKey(ctx context.Context, keyData string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("MOCK%012X", len(m.gpgKeys)+1)
	m.gpgKeys = append(m.gpgKeys, GPGKey{KeyID: id, Trust: "unknown", KeyData: keyData})
	return nil
}

func (m *MockClient) DeleteGPGKey(ctx context.Context, keyID string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gpgKeys = removeWhere(m.gpgKeys, func(k GPGKey) bool { return k.KeyID == keyID })
	return nil
}

func (m *MockClient) Settings(ctx context.Context) (Settings, error) {
	_ = ctx
	return Settings{URL: "https://argocd.example.com", UserLoginsEnabled: true}, nil
}

func (m *MockClient) Login(ctx context.Context, username, password string) (string, error) {
	_ = ctx
	if username == "" || password == "" {
		return "", &APIError{Type: ErrUnauthorized, Status: 401, Message: "invalid username or password"}
	}
	return "mock-token-" + username, nil
}

func (m *MockClient) UserInfo(ctx context.Context) (UserInfo, error) {
	_ = ctx
	return UserInfo{LoggedIn: true, Username: "admin", Issuer: "argocd"}, nil
}

func removeWhere[T any](in []T, match func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}

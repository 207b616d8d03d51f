package argocd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// HTTPClient is an Argo CD API client over HTTP.
// It targets the Argo CD REST API used by the web UI/CLI.
//
// API base: <server>/api/v1/
// Login:    POST /api/v1/session {username,password} -> {token}
// Apps:     GET  /api/v1/applications
// App:      GET  /api/v1/applications/{name}
// Tree:     GET  /api/v1/applications/{name}/resource-tree
// Diff:     GET  /api/v1/applications/{name}/managed-resources
type HTTPClient struct {
	Server    string
	Session   *Session
	Username  string
	Password  string
	Timeout   time.Duration
	HTTP      *http.Client
	UserAgent string
	Insecure  bool
	Logger    *slog.Logger

	// Cache holds GET responses for list endpoints. Writes invalidate it.
	Cache    *gocache.Cache
	CacheTTL time.Duration

	httpOnce sync.Once
}

func NewHTTPClient(server string, session *Session) *HTTPClient {
	if session == nil {
		session = NewSession("")
	}
	return &HTTPClient{
		Server:    strings.TrimRight(server, "/"),
		Session:   session,
		Timeout:   10 * time.Second,
		UserAgent: "argodash/0.1.0",
		Logger:    slog.Default(),
		Cache:     gocache.New(5*time.Second, time.Minute),
		CacheTTL:  5 * time.Second,
	}
}

func (c *HTTPClient) client() *http.Client {
	c.httpOnce.Do(func() {
		if c.HTTP != nil {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.Insecure {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // explicit user flag
		}
		c.HTTP = &http.Client{Timeout: c.Timeout, Transport: transport}
	})
	return c.HTTP
}

func (c *HTTPClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// ensureLogin trades configured credentials for a token when the session
// has none. Without credentials the request goes out anonymously and a
// 401 tells the UI to ask for a login.
func (c *HTTPClient) ensureLogin(ctx context.Context) error {
	if c.Session.Token() != "" {
		return nil
	}
	if c.Username == "" || c.Password == "" {
		return nil
	}
	_, err := c.Login(ctx, c.Username, c.Password)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/session", payload, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("argocd login returned empty token")
	}
	c.Session.SetToken(out.Token)
	c.invalidate("")
	return out.Token, nil
}

func (c *HTTPClient) UserInfo(ctx context.Context) (UserInfo, error) {
	var resp struct {
		LoggedIn bool     `json:"loggedIn"`
		Username string   `json:"username"`
		Iss      string   `json:"iss"`
		Groups   []string `json:"groups"`
	}
	if err := c.get(ctx, "/api/v1/session/userinfo", &resp); err != nil {
		return UserInfo{}, err
	}
	return UserInfo{LoggedIn: resp.LoggedIn, Username: resp.Username, Issuer: resp.Iss, Groups: resp.Groups}, nil
}

func (c *HTTPClient) ListApplications(ctx context.Context) ([]Application, error) {
	var resp struct {
		Items []wireApp `json:"items"`
	}

	// NOTE: Argo CD returns {metadata:{}, items:[...]}. items can be null.
	if err := c.getCached(ctx, "/api/v1/applications", &resp); err != nil {
		return nil, err
	}

	apps := make([]Application, 0, len(resp.Items))
	for _, it := range resp.Items {
		apps = append(apps, it.app())
	}
	return apps, nil
}

func (c *HTTPClient) GetApplication(ctx context.Context, name string) (Application, error) {
	return c.getApp(ctx, appPath(name))
}

// RefreshApplication asks the server to re-compare the app before
// returning it. hard also invalidates the manifest cache.
func (c *HTTPClient) RefreshApplication(ctx context.Context, name string, hard bool) (Application, error) {
	mode := "normal"
	if hard {
		mode = "hard"
	}
	return c.getApp(ctx, appPath(name)+"?refresh="+mode)
}

func (c *HTTPClient) getApp(ctx context.Context, path string) (Application, error) {
	var resp wireApp
	if err := c.get(ctx, path, &resp); err != nil {
		return Application{}, err
	}
	return resp.app(), nil
}

func (c *HTTPClient) ResourceTree(ctx context.Context, name string) (ResourceTree, error) {
	var resp wireTree
	if err := c.get(ctx, appPath(name)+"/resource-tree", &resp); err != nil {
		return ResourceTree{}, err
	}
	tree := ResourceTree{
		Nodes:         make([]ResourceNode, 0, len(resp.Nodes)),
		OrphanedNodes: make([]ResourceNode, 0, len(resp.OrphanedNodes)),
	}
	for _, n := range resp.Nodes {
		tree.Nodes = append(tree.Nodes, n.node())
	}
	for _, n := range resp.OrphanedNodes {
		tree.OrphanedNodes = append(tree.OrphanedNodes, n.node())
	}
	return tree, nil
}

func (c *HTTPClient) ManagedResources(ctx context.Context, name string) ([]ManagedResource, error) {
	var resp wireManagedResources
	if err := c.get(ctx, appPath(name)+"/managed-resources", &resp); err != nil {
		return nil, err
	}
	out := make([]ManagedResource, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, ManagedResource(it))
	}
	return out, nil
}

func (c *HTTPClient) GetResource(ctx context.Context, name string, ref ResourceRef) (string, error) {
	q := url.Values{}
	q.Set("resourceName", ref.Name)
	q.Set("namespace", ref.Namespace)
	q.Set("group", ref.Group)
	q.Set("kind", ref.Kind)
	q.Set("version", ref.Version)
	var resp struct {
		Manifest string `json:"manifest"`
	}
	if err := c.get(ctx, appPath(name)+"/resource?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	return resp.Manifest, nil
}

func (c *HTTPClient) GetManifests(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Manifests []string `json:"manifests"`
	}
	if err := c.get(ctx, appPath(name)+"/manifests", &resp); err != nil {
		return nil, err
	}
	return resp.Manifests, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, name string, ref *ResourceRef) ([]Event, error) {
	path := appPath(name) + "/events"
	if ref != nil {
		q := url.Values{}
		q.Set("resourceName", ref.Name)
		q.Set("resourceNamespace", ref.Namespace)
		q.Set("resourceUID", ref.UID)
		path += "?" + q.Encode()
	}
	var resp struct {
		Items []wireEvent `json:"items"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(resp.Items))
	for _, e := range resp.Items {
		out = append(out, e.event())
	}
	return out, nil
}

// RevisionMetadata never changes for a given revision, so it is cached
// without expiry.
func (c *HTTPClient) RevisionMetadata(ctx context.Context, name, revision string) (RevisionMeta, error) {
	path := appPath(name) + "/revisions/" + url.PathEscape(revision) + "/metadata"
	if v, ok := c.cacheGet(path); ok {
		return v.(RevisionMeta), nil
	}
	var resp struct {
		Author  string    `json:"author"`
		Date    time.Time `json:"date"`
		Tags    []string  `json:"tags"`
		Message string    `json:"message"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return RevisionMeta{}, err
	}
	meta := RevisionMeta(resp)
	if c.Cache != nil {
		c.Cache.Set(path, meta, gocache.NoExpiration)
	}
	return meta, nil
}

// ChartDetails is the Helm counterpart of RevisionMetadata and is cached
// the same way.
func (c *HTTPClient) ChartDetails(ctx context.Context, name, revision string) (ChartMeta, error) {
	path := appPath(name) + "/revisions/" + url.PathEscape(revision) + "/chartdetails"
	if v, ok := c.cacheGet(path); ok {
		return v.(ChartMeta), nil
	}
	var resp struct {
		Description string   `json:"description"`
		Maintainers []string `json:"maintainers"`
		Home        string   `json:"home"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return ChartMeta{}, err
	}
	chart := ChartMeta(resp)
	if c.Cache != nil {
		c.Cache.Set(path, chart, gocache.NoExpiration)
	}
	return chart, nil
}

func (c *HTTPClient) SyncApplication(ctx context.Context, name string, opts SyncOptions) error {
	payload := struct {
		DryRun   bool   `json:"dryRun"`
		Prune    bool   `json:"prune"`
		Revision string `json:"revision,omitempty"`
	}{DryRun: opts.DryRun, Prune: opts.Prune, Revision: opts.Revision}

	// The Argo CD API returns the Application. The caller refetches instead.
	if err := c.do(ctx, http.MethodPost, appPath(name)+"/sync", payload, nil); err != nil {
		return err
	}
	if !opts.DryRun {
		c.invalidate("/api/v1/applications")
	}
	return nil
}

func (c *HTTPClient) RollbackApplication(ctx context.Context, name string, id int64, prune bool) error {
	payload := struct {
		ID    int64 `json:"id"`
		Prune bool  `json:"prune"`
	}{ID: id, Prune: prune}
	if err := c.do(ctx, http.MethodPost, appPath(name)+"/rollback", payload, nil); err != nil {
		return err
	}
	c.invalidate("/api/v1/applications")
	return nil
}

func (c *HTTPClient) TerminateOperation(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, appPath(name)+"/operation", nil, nil); err != nil {
		return err
	}
	c.invalidate("/api/v1/applications")
	return nil
}

func (c *HTTPClient) DeleteApplication(ctx context.Context, name string, cascade bool) error {
	path := fmt.Sprintf("%s?cascade=%t", appPath(name), cascade)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.invalidate("/api/v1/applications")
	return nil
}

func (c *HTTPClient) ListClusters(ctx context.Context) ([]Cluster, error) {
	var resp struct {
		Items []wireCluster `json:"items"`
	}
	if err := c.getCached(ctx, "/api/v1/clusters", &resp); err != nil {
		return nil, err
	}
	out := make([]Cluster, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, it.cluster())
	}
	return out, nil
}

func (c *HTTPClient) CreateCluster(ctx context.Context, cl Cluster) error {
	payload := wireCluster{
		Server:     cl.Server,
		Name:       cl.Name,
		Namespaces: cl.Namespaces,
		Config:     &wireClusterConfig{BearerToken: cl.BearerToken},
	}
	payload.Config.TLSClientConfig.Insecure = cl.Insecure
	return c.write(ctx, http.MethodPost, "/api/v1/clusters", payload, "/api/v1/clusters")
}

func (c *HTTPClient) DeleteCluster(ctx context.Context, server string) error {
	return c.write(ctx, http.MethodDelete, "/api/v1/clusters/"+url.QueryEscape(server), nil, "/api/v1/clusters")
}

func (c *HTTPClient) ListRepositories(ctx context.Context) ([]Repository, error) {
	var resp struct {
		Items []wireRepository `json:"items"`
	}
	if err := c.getCached(ctx, "/api/v1/repositories", &resp); err != nil {
		return nil, err
	}
	out := make([]Repository, 0, len(resp.Items))
	for _, it := range resp.Items {
		r := Repository{Repo: it.Repo, Type: it.Type, Name: it.Name, Project: it.Project, Username: it.Username, Insecure: it.Insecure}
		if it.ConnectionState != nil {
			r.ConnectionState = it.ConnectionState.Status
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *HTTPClient) CreateRepository(ctx context.Context, r Repository) error {
	payload := wireRepository{
		Repo:     r.Repo,
		Type:     r.Type,
		Name:     r.Name,
		Project:  r.Project,
		Username: r.Username,
		Password: r.Password,
		Insecure: r.Insecure,
	}
	return c.write(ctx, http.MethodPost, "/api/v1/repositories", payload, "/api/v1/repositories")
}

func (c *HTTPClient) DeleteRepository(ctx context.Context, repo string) error {
	return c.write(ctx, http.MethodDelete, "/api/v1/repositories/"+url.QueryEscape(repo), nil, "/api/v1/repositories")
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Items []wireProject `json:"items"`
	}
	if err := c.getCached(ctx, "/api/v1/projects", &resp); err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(resp.Items))
	for _, it := range resp.Items {
		p := Project{Name: it.Metadata.Name, Description: it.Spec.Description, SourceRepos: it.Spec.SourceRepos}
		for _, d := range it.Spec.Destinations {
			p.Destinations = append(p.Destinations, ProjectDestination(d))
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *HTTPClient) CreateProject(ctx context.Context, p Project) error {
	var wp wireProject
	wp.Metadata.Name = p.Name
	wp.Spec.Description = p.Description
	wp.Spec.SourceRepos = p.SourceRepos
	for _, d := range p.Destinations {
		wp.Spec.Destinations = append(wp.Spec.Destinations, struct {
			Server    string `json:"server,omitempty"`
			Namespace string `json:"namespace,omitempty"`
			Name      string `json:"name,omitempty"`
		}(d))
	}
	payload := struct {
		Project wireProject `json:"project"`
	}{Project: wp}
	return c.write(ctx, http.MethodPost, "/api/v1/projects", payload, "/api/v1/projects")
}

func (c *HTTPClient) DeleteProject(ctx context.Context, name string) error {
	return c.write(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(name), nil, "/api/v1/projects")
}

func (c *HTTPClient) ListCertificates(ctx context.Context) ([]Certificate, error) {
	var resp struct {
		Items []wireCert `json:"items"`
	}
	if err := c.getCached(ctx, "/api/v1/certificates", &resp); err != nil {
		return nil, err
	}
	out := make([]Certificate, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, it.cert())
	}
	return out, nil
}

func (c *HTTPClient) CreateCertificate(ctx context.Context, cert Certificate) error {
	payload := struct {
		Items []wireCert `json:"items"`
	}{Items: []wireCert{{
		ServerName:  cert.ServerName,
		CertType:    cert.CertType,
		CertSubType: cert.CertSubType,
		CertData:    base64.StdEncoding.EncodeToString([]byte(cert.CertData)),
	}}}
	return c.write(ctx, http.MethodPost, "/api/v1/certificates", payload, "/api/v1/certificates")
}

func (c *HTTPClient) DeleteCertificate(ctx context.Context, cert Certificate) error {
	q := url.Values{}
	q.Set("serverName", cert.ServerName)
	q.Set("certType", cert.CertType)
	q.Set("certSubType", cert.CertSubType)
	return c.write(ctx, http.MethodDelete, "/api/v1/certificates?"+q.Encode(), nil, "/api/v1/certificates")
}

func (c *HTTPClient) ListGPGKeys(ctx context.Context) ([]GPGKey, error) {
	var resp struct {
		Items []wireGPGKey `json:"items"`
	}
	if err := c.getCached(ctx, "/api/v1/gpgkeys", &resp); err != nil {
		return nil, err
	}
	out := make([]GPGKey, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, GPGKey(it))
	}
	return out, nil
}

func (c *HTTPClient) CreateGPGKey(ctx context.Context, keyData string) error {
	payload := struct {
		KeyData string `json:"keyData"`
	}{KeyData: keyData}
	return c.write(ctx, http.MethodPost, "/api/v1/gpgkeys", payload, "/api/v1/gpgkeys")
}

func (c *HTTPClient) DeleteGPGKey(ctx context.Context, keyID string) error {
	return c.write(ctx, http.MethodDelete, "/api/v1/gpgkeys?keyID="+url.QueryEscape(keyID), nil, "/api/v1/gpgkeys")
}

func (c *HTTPClient) Settings(ctx context.Context) (Settings, error) {
	var resp struct {
		URL                string          `json:"url"`
		DexConfig          json.RawMessage `json:"dexConfig"`
		OIDCConfig         json.RawMessage `json:"oidcConfig"`
		StatusBadgeEnabled bool            `json:"statusBadgeEnabled"`
		UserLoginsDisabled bool            `json:"userLoginsDisabled"`
	}
	if err := c.getCached(ctx, "/api/v1/settings", &resp); err != nil {
		return Settings{}, err
	}
	present := func(raw json.RawMessage) bool {
		s := strings.TrimSpace(string(raw))
		return s != "" && s != "null" && s != "{}"
	}
	return Settings{
		URL:               resp.URL,
		DexConfigured:     present(resp.DexConfig),
		OIDCConfigured:    present(resp.OIDCConfig),
		StatusBadge:       resp.StatusBadgeEnabled,
		UserLoginsEnabled: !resp.UserLoginsDisabled,
	}, nil
}

func appPath(name string) string {
	return "/api/v1/applications/" + url.PathEscape(name)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// getCached serves the decoded body from the query cache when present.
// The raw body is cached, so callers always decode into fresh values.
func (c *HTTPClient) getCached(ctx context.Context, path string, out any) error {
	if v, ok := c.cacheGet(path); ok {
		if b, ok := v.([]byte); ok {
			return json.Unmarshal(b, out)
		}
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	if c.Cache != nil {
		c.Cache.Set(path, []byte(raw), c.CacheTTL)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *HTTPClient) cacheGet(key string) (any, bool) {
	if c.Cache == nil {
		return nil, false
	}
	return c.Cache.Get(key)
}

// write performs a mutating request and drops cached reads under prefix.
func (c *HTTPClient) write(ctx context.Context, method, path string, in any, prefix string) error {
	if err := c.do(ctx, method, path, in, nil); err != nil {
		return err
	}
	c.invalidate(prefix)
	return nil
}

// InvalidateApplications drops the cached application list.
func (c *HTTPClient) InvalidateApplications() {
	c.invalidate("/api/v1/applications")
}

// invalidate removes cached entries whose key starts with prefix.
// An empty prefix clears everything.
func (c *HTTPClient) invalidate(prefix string) {
	if c.Cache == nil {
		return
	}
	if prefix == "" {
		c.Cache.Flush()
		return
	}
	for k := range c.Cache.Items() {
		if strings.HasPrefix(k, prefix) && !strings.Contains(k, "/revisions/") {
			c.Cache.Delete(k)
		}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, out any) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	return c.doJSON(ctx, method, path, in, out)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any, out any) error {
	base, err := url.Parse(c.Server)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid server url %q", c.Server)
	}
	// path is already escaped and may carry a query string.
	target := strings.TrimRight(base.String(), "/") + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if tok := c.Session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	logger := c.logger()

	start := time.Now()
	res, err := c.client().Do(req)
	dur := time.Since(start)
	if err != nil {
		// Common local dev case: https://localhost:8080 via port-forward with a cert that isn't trusted.
		typ, hint := ErrUnreachable, ""
		var certErr *tls.CertificateVerificationError
		es := err.Error()
		if errors.As(err, &certErr) || strings.Contains(es, "x509") || strings.Contains(es, "certificate") {
			typ = ErrTLS
			hint = " (TLS error: try --insecure or set ARGOCD_INSECURE=true)"
		}

		logger.Error("argocd request failed",
			"method", method,
			"path", path,
			"duration_ms", dur.Milliseconds(),
			"err", err,
		)
		return &APIError{
			Type:    typ,
			Method:  method,
			Path:    path,
			Message: fmt.Sprintf("argocd request failed: %v%s", err, hint),
			Err:     err,
		}
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	logger.Debug("argocd request",
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"duration_ms", dur.Milliseconds(),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := errorMessage(b)
		logger.Warn("argocd non-2xx response",
			"method", method,
			"path", path,
			"status", res.StatusCode,
			"response", msg,
		)
		return &APIError{
			Type:    typeForStatus(res.StatusCode),
			Status:  res.StatusCode,
			Method:  method,
			Path:    path,
			Message: fmt.Sprintf("argocd api %s %s failed: %s: %s", method, path, res.Status, msg),
		}
	}
	if out == nil {
		return nil
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage prefers the gRPC-gateway {"message": ...} field and falls
// back to the trimmed body.
func errorMessage(b []byte) string {
	var gw struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &gw); err == nil {
		if gw.Message != "" {
			return gw.Message
		}
		if gw.Error != "" {
			return gw.Error
		}
	}
	msg := strings.TrimSpace(string(b))
	if len(msg) > 500 {
		msg = msg[:500] + "…"
	}
	return msg
}

package argocd

// Cluster is a destination cluster registered in Argo CD.
type Cluster struct {
	Name            string
	Server          string
	Namespaces      []string
	ConnectionState string
	ServerVersion   string

	// BearerToken is only sent on create.
	BearerToken string
	Insecure    bool
}

type Repository struct {
	Repo            string
	Type            string // git or helm
	Name            string
	Project         string
	Username        string
	Password        string
	Insecure        bool
	ConnectionState string
}

type Project struct {
	Name         string
	Description  string
	SourceRepos  []string
	Destinations []ProjectDestination
}

type ProjectDestination struct {
	Server    string
	Namespace string
	Name      string
}

// Certificate is a TLS or SSH known-hosts entry.
type Certificate struct {
	ServerName  string
	CertType    string // https or ssh
	CertSubType string
	CertData    string
	CertInfo    string
}

type GPGKey struct {
	KeyID       string
	Fingerprint string
	Owner       string
	Trust       string
	SubType     string
	KeyData     string
}

// Settings is the subset of /api/v1/settings the header shows.
type Settings struct {
	URL               string
	DexConfigured     bool
	OIDCConfigured    bool
	StatusBadge       bool
	UserLoginsEnabled bool
}

type UserInfo struct {
	LoggedIn bool
	Username string
	Issuer   string
	Groups   []string
}

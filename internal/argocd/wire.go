package argocd

import (
	"encoding/base64"
	"time"
)

// Wire shapes of the Argo CD REST API. Only the fields the console reads
// are declared; everything else is ignored by encoding/json.

type wireInitiator struct {
	Username  string `json:"username"`
	Automated bool   `json:"automated"`
}

type wireRef struct {
	Group     string `json:"group"`
	Version   string `json:"version"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	UID       string `json:"uid"`
}

func (r wireRef) ref() ResourceRef {
	return ResourceRef{Group: r.Group, Version: r.Version, Kind: r.Kind, Namespace: r.Namespace, Name: r.Name, UID: r.UID}
}

type wireHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type wireSource struct {
	RepoURL        string `json:"repoURL"`
	TargetRevision string `json:"targetRevision"`
	Path           string `json:"path"`
	Chart          string `json:"chart"`
}

type wireApp struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec struct {
		Project     string       `json:"project"`
		Source      *wireSource  `json:"source"`
		Sources     []wireSource `json:"sources"`
		Destination struct {
			Namespace string `json:"namespace"`
			Server    string `json:"server"`
			Name      string `json:"name"`
		} `json:"destination"`
	} `json:"spec"`
	Status struct {
		Health wireHealth `json:"health"`
		Sync   struct {
			Status   string `json:"status"`
			Revision string `json:"revision"`
		} `json:"sync"`
		Resources []struct {
			wireRef
			Status          string      `json:"status"`
			Health          *wireHealth `json:"health"`
			Hook            bool        `json:"hook"`
			RequiresPruning bool        `json:"requiresPruning"`
		} `json:"resources"`
		History []struct {
			ID              int64         `json:"id"`
			Revision        string        `json:"revision"`
			DeployedAt      time.Time     `json:"deployedAt"`
			DeployStartedAt *time.Time    `json:"deployStartedAt"`
			InitiatedBy     wireInitiator `json:"initiatedBy"`
			Source          wireSource    `json:"source"`
		} `json:"history"`
		OperationState *struct {
			Phase      string     `json:"phase"`
			Message    string     `json:"message"`
			StartedAt  time.Time  `json:"startedAt"`
			FinishedAt *time.Time `json:"finishedAt"`
			Operation  struct {
				Sync *struct {
					Revision string `json:"revision"`
					Prune    bool   `json:"prune"`
					DryRun   bool   `json:"dryRun"`
				} `json:"sync"`
				InitiatedBy wireInitiator `json:"initiatedBy"`
			} `json:"operation"`
			SyncResult *struct {
				Revision  string `json:"revision"`
				Resources []struct {
					Group     string `json:"group"`
					Kind      string `json:"kind"`
					Namespace string `json:"namespace"`
					Name      string `json:"name"`
					Status    string `json:"status"`
					Message   string `json:"message"`
					HookPhase string `json:"hookPhase"`
					SyncPhase string `json:"syncPhase"`
				} `json:"resources"`
			} `json:"syncResult"`
		} `json:"operationState"`
		Conditions []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"conditions"`
	} `json:"status"`
}

func (w wireApp) app() Application {
	src := w.Spec.Source
	if src == nil && len(w.Spec.Sources) > 0 {
		src = &w.Spec.Sources[0]
	}
	if src == nil {
		src = &wireSource{}
	}
	path := src.Path
	if path == "" {
		path = src.Chart
	}
	cluster := w.Spec.Destination.Server
	if cluster == "" {
		cluster = w.Spec.Destination.Name
	}

	a := Application{
		Name:           w.Metadata.Name,
		Namespace:      w.Spec.Destination.Namespace,
		Project:        w.Spec.Project,
		Health:         w.Status.Health.Status,
		Sync:           w.Status.Sync.Status,
		RepoURL:        src.RepoURL,
		Path:           path,
		Chart:          src.Chart,
		Revision:       src.TargetRevision,
		Cluster:        cluster,
		SyncedRevision: w.Status.Sync.Revision,
	}

	a.Resources = make([]ResourceStatus, 0, len(w.Status.Resources))
	for _, r := range w.Status.Resources {
		rs := ResourceStatus{
			Group:           r.Group,
			Version:         r.Version,
			Kind:            r.Kind,
			Namespace:       r.Namespace,
			Name:            r.Name,
			Status:          r.Status,
			Hook:            r.Hook,
			RequiresPruning: r.RequiresPruning,
		}
		if r.Health != nil {
			rs.Health = r.Health.Status
			rs.HealthMessage = r.Health.Message
		}
		a.Resources = append(a.Resources, rs)
	}

	// The API appends to history, so the newest deployment is last.
	a.History = make([]RevisionHistory, 0, len(w.Status.History))
	for i := len(w.Status.History) - 1; i >= 0; i-- {
		h := w.Status.History[i]
		a.History = append(a.History, RevisionHistory{
			ID:              h.ID,
			Revision:        h.Revision,
			DeployedAt:      h.DeployedAt,
			DeployStartedAt: h.DeployStartedAt,
			InitiatedBy:     Initiator(h.InitiatedBy),
			Source:          h.Source.RepoURL,
		})
	}

	if op := w.Status.OperationState; op != nil {
		st := &OperationState{
			Phase:      OperationPhase(op.Phase),
			Message:    op.Message,
			StartedAt:  op.StartedAt,
			FinishedAt: op.FinishedAt,
			Operation:  Operation{InitiatedBy: Initiator(op.Operation.InitiatedBy)},
		}
		if s := op.Operation.Sync; s != nil {
			st.Operation.Sync = &SyncOperation{Revision: s.Revision, Prune: s.Prune, DryRun: s.DryRun}
		}
		if sr := op.SyncResult; sr != nil {
			st.SyncResult = &SyncResult{Revision: sr.Revision}
			for _, r := range sr.Resources {
				st.SyncResult.Resources = append(st.SyncResult.Resources, ResourceResult(r))
			}
		}
		a.OperationState = st
	}

	for _, c := range w.Status.Conditions {
		a.Conditions = append(a.Conditions, AppCondition{Type: c.Type, Message: c.Message})
	}
	return a
}

type wireManagedResources struct {
	Items []struct {
		Group               string `json:"group"`
		Kind                string `json:"kind"`
		Namespace           string `json:"namespace"`
		Name                string `json:"name"`
		LiveState           string `json:"liveState"`
		NormalizedLiveState string `json:"normalizedLiveState"`
		TargetState         string `json:"targetState"`
		PredictedLiveState  string `json:"predictedLiveState"`
		Hook                bool   `json:"hook"`
	} `json:"items"`
}

type wireNode struct {
	wireRef
	ParentRefs []wireRef   `json:"parentRefs"`
	Health     *wireHealth `json:"health"`
	Images     []string    `json:"images"`
	Info       []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"info"`
	ResourceVersion string     `json:"resourceVersion"`
	CreatedAt       *time.Time `json:"createdAt"`
}

func (w wireNode) node() ResourceNode {
	n := ResourceNode{
		ResourceRef:     w.ref(),
		Images:          w.Images,
		ResourceVersion: w.ResourceVersion,
	}
	for _, p := range w.ParentRefs {
		n.ParentRefs = append(n.ParentRefs, p.ref())
	}
	if w.Health != nil {
		n.Health = w.Health.Status
		n.HealthMessage = w.Health.Message
	}
	for _, i := range w.Info {
		n.Info = append(n.Info, InfoItem(i))
	}
	if w.CreatedAt != nil {
		n.CreatedAt = *w.CreatedAt
	}
	return n
}

type wireTree struct {
	Nodes         []wireNode `json:"nodes"`
	OrphanedNodes []wireNode `json:"orphanedNodes"`
}

type wireCluster struct {
	Server          string   `json:"server"`
	Name            string   `json:"name"`
	Namespaces      []string `json:"namespaces,omitempty"`
	ServerVersion   string   `json:"serverVersion,omitempty"`
	ConnectionState *struct {
		Status string `json:"status"`
	} `json:"connectionState,omitempty"`
	Info *struct {
		ServerVersion   string `json:"serverVersion"`
		ConnectionState struct {
			Status string `json:"status"`
		} `json:"connectionState"`
	} `json:"info,omitempty"`
	Config *wireClusterConfig `json:"config,omitempty"`
}

type wireClusterConfig struct {
	BearerToken     string `json:"bearerToken,omitempty"`
	TLSClientConfig struct {
		Insecure bool `json:"insecure"`
	} `json:"tlsClientConfig"`
}

func (w wireCluster) cluster() Cluster {
	c := Cluster{Name: w.Name, Server: w.Server, Namespaces: w.Namespaces, ServerVersion: w.ServerVersion}
	if w.ConnectionState != nil {
		c.ConnectionState = w.ConnectionState.Status
	}
	if w.Info != nil {
		if w.Info.ServerVersion != "" {
			c.ServerVersion = w.Info.ServerVersion
		}
		if w.Info.ConnectionState.Status != "" {
			c.ConnectionState = w.Info.ConnectionState.Status
		}
	}
	return c
}

type wireRepository struct {
	Repo            string `json:"repo"`
	Type            string `json:"type,omitempty"`
	Name            string `json:"name,omitempty"`
	Project         string `json:"project,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	Insecure        bool   `json:"insecure,omitempty"`
	ConnectionState *struct {
		Status string `json:"status"`
	} `json:"connectionState,omitempty"`
}

type wireProject struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec struct {
		Description  string   `json:"description,omitempty"`
		SourceRepos  []string `json:"sourceRepos,omitempty"`
		Destinations []struct {
			Server    string `json:"server,omitempty"`
			Namespace string `json:"namespace,omitempty"`
			Name      string `json:"name,omitempty"`
		} `json:"destinations,omitempty"`
	} `json:"spec"`
}

// wireCert.CertData is []byte on the server, so it travels base64-encoded.
type wireCert struct {
	ServerName  string `json:"serverName"`
	CertType    string `json:"certType"`
	CertSubType string `json:"certSubType,omitempty"`
	CertData    string `json:"certData,omitempty"`
	CertInfo    string `json:"certInfo,omitempty"`
}

func (w wireCert) cert() Certificate {
	data := w.CertData
	if b, err := base64.StdEncoding.DecodeString(w.CertData); err == nil {
		data = string(b)
	}
	return Certificate{ServerName: w.ServerName, CertType: w.CertType, CertSubType: w.CertSubType, CertData: data, CertInfo: w.CertInfo}
}

type wireGPGKey struct {
	KeyID       string `json:"keyID"`
	Fingerprint string `json:"fingerprint"`
	Owner       string `json:"owner"`
	Trust       string `json:"trust"`
	SubType     string `json:"subType"`
	KeyData     string `json:"keyData"`
}

type wireEvent struct {
	Type           string     `json:"type"`
	Reason         string     `json:"reason"`
	Message        string     `json:"message"`
	Count          int32      `json:"count"`
	FirstTimestamp *time.Time `json:"firstTimestamp"`
	LastTimestamp  *time.Time `json:"lastTimestamp"`
	InvolvedObject struct {
		Kind      string `json:"kind"`
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"involvedObject"`
}

func (w wireEvent) event() Event {
	e := Event{Type: w.Type, Reason: w.Reason, Message: w.Message, Count: w.Count}
	switch {
	case w.LastTimestamp != nil:
		e.Timestamp = *w.LastTimestamp
	case w.FirstTimestamp != nil:
		e.Timestamp = *w.FirstTimestamp
	}
	if w.InvolvedObject.Kind != "" {
		e.InvolvedObject = w.InvolvedObject.Kind + "/" + w.InvolvedObject.Name
	}
	return e
}

// Package live implements the reference LivePolicySource collaborator
// (spec §6): it authenticates to Microsoft Entra with a client secret
// credential and fetches the tenant's live Conditional Access Policies from
// Microsoft Graph, re-wrapping the response in the export envelope shape
// loader/json already knows how to decode.
//
// This package is a reference implementation of the seam, not part of the
// comparison engine itself — engine.Options.Live accepts any
// sdk.LivePolicySource, and tests or alternate front ends are free to supply
// their own.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/cloudsec/policydrift/sdk"
)

const graphPoliciesURL = "https://graph.microsoft.com/v1.0/identity/conditionalAccess/policies"

const graphScope = "https://graph.microsoft.com/.default"

// Environment variable names consumed by this collaborator, per spec §6:
// "tenant, client, and secret identifiers; the core merely passes them
// through to the collaborator."
const (
	EnvTenantID     = "POLICYDRIFT_TENANT_ID"
	EnvClientID     = "POLICYDRIFT_CLIENT_ID"
	EnvClientSecret = "POLICYDRIFT_CLIENT_SECRET"
)

// graphListResponse mirrors the envelope Microsoft Graph wraps every
// collection response in; Value carries exactly the policy documents the
// JSON loader already expects.
type graphListResponse struct {
	Value json.RawMessage `json:"value"`
}

// SourceFromEnv builds an sdk.LivePolicySource from the three credential
// environment variables. It returns nil when any are unset, so that main can
// wire it in unconditionally and let the engine surface the resulting
// invalidConfiguration error only if a run actually needs the live source
// (i.e. --entra-file was not given).
func SourceFromEnv() sdk.LivePolicySource {
	tenantID := os.Getenv(EnvTenantID)
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)

	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil
	}

	return New(tenantID, clientID, clientSecret).Fetch
}

// Source fetches live Conditional Access Policies for one tenant.
type Source struct {
	tenantID string
	clientID string
	secret   string

	httpClient *http.Client
}

// New builds a Source from explicit credentials.
func New(tenantID, clientID, clientSecret string) *Source {
	return &Source{
		tenantID:   tenantID,
		clientID:   clientID,
		secret:     clientSecret,
		httpClient: http.DefaultClient,
	}
}

// Fetch satisfies sdk.LivePolicySource: it authenticates, calls Graph once,
// and returns the response re-wrapped as an export envelope.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	cred, err := azidentity.NewClientSecretCredential(s.tenantID, s.clientID, s.secret, nil)
	if err != nil {
		return nil, fmt.Errorf("building Azure client secret credential: %w", err)
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{graphScope}})
	if err != nil {
		return nil, fmt.Errorf("acquiring Graph token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphPoliciesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building Graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Graph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading Graph response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Graph returned %s: %s", resp.Status, string(body))
	}

	var listResp graphListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("decoding Graph policy list: %w", err)
	}

	envelope := struct {
		ExportedAt string          `json:"exportedAt"`
		TenantID   string          `json:"tenantId"`
		Policies   json.RawMessage `json:"policies"`
	}{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TenantID:   s.tenantID,
		Policies:   listResp.Value,
	}

	return json.Marshal(envelope)
}

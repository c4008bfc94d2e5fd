package airbyte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
)

const apiRoot = "api/v1"

type (
	// Verb is the action part of an endpoint.
	Verb string

	// Resource is the entity part of an endpoint.
	Resource string

	// Object is a single API entity as returned by the control plane.
	Object = map[string]any

	// Endpoint is a resolved API operation.
	Endpoint struct {
		Verb     Verb
		Resource Resource
		URL      string
	}

	// Client talks to one Airbyte instance.
	//
	// The endpoint table is built once in New. Inventory is empty until Load
	// succeeds.
	Client struct {
		base      string
		http      *http.Client
		endpoints map[Resource]map[Verb]Endpoint

		Inventory Inventory
	}

	// Option configures a Client.
	Option func(*Client)

	// Inventory is the state of a workspace fetched by Load.
	Inventory struct {
		WorkspaceID            string
		Connections            []Object
		Sources                []Object
		Destinations           []Object
		SourceDefinitions      []Object
		DestinationDefinitions []Object
	}

	// APIError wraps every failure talking to the control plane. Status is
	// zero when no response was received.
	APIError struct {
		Endpoint string
		Status   int
		Message  string
		Err      error
	}
)

const (
	List   Verb = "list"
	Get    Verb = "get"
	Delete Verb = "delete"
	Update Verb = "update"
	Create Verb = "create"
)

const (
	DestinationDefinitions              Resource = "destination_definitions"
	SourceDefinitions                   Resource = "source_definitions"
	DestinationDefinitionSpecifications Resource = "destination_definition_specifications"
	SourceDefinitionSpecifications      Resource = "source_definition_specifications"
	Connections                         Resource = "connections"
	Sources                             Resource = "sources"
	Destinations                        Resource = "destinations"
	Workspaces                          Resource = "workspaces"
)

var (
	// Verbs lists every verb the API exposes for each resource.
	Verbs = []Verb{List, Get, Delete, Update, Create}

	// Resources lists every entity the API exposes.
	Resources = []Resource{
		DestinationDefinitions,
		SourceDefinitions,
		DestinationDefinitionSpecifications,
		SourceDefinitionSpecifications,
		Connections,
		Sources,
		Destinations,
		Workspaces,
	}
)

// WithHTTPClient replaces the pooled cleanhttp client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

// New builds a client for host:port. A host without a scheme is assumed to
// be plain http.
func New(host, port string, opts ...Option) *Client {
	host = strings.TrimRight(host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	c := &Client{
		base:      fmt.Sprintf("%s:%s/%s", host, port, apiRoot),
		http:      cleanhttp.DefaultPooledClient(),
		endpoints: make(map[Resource]map[Verb]Endpoint, len(Resources)),
	}

	for _, r := range Resources {
		c.endpoints[r] = make(map[Verb]Endpoint, len(Verbs))
		for _, v := range Verbs {
			c.endpoints[r][v] = Endpoint{Verb: v, Resource: r, URL: fmt.Sprintf("%s/%s/%s", c.base, r, v)}
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root, e.g. http://localhost:8000/api/v1.
func (c *Client) BaseURL() string {
	return c.base
}

// Endpoint returns the operation for verb on resource.
func (c *Client) Endpoint(v Verb, r Resource) (Endpoint, bool) {
	ep, ok := c.endpoints[r][v]
	return ep, ok
}

func (c *Client) endpoint(v Verb, r Resource) Endpoint {
	ep, ok := c.Endpoint(v, r)
	if !ok {
		panic(fmt.Sprintf("airbyte: no endpoint for %s %s", v, r))
	}
	return ep
}

// Call POSTs body as JSON to ep and decodes a 2xx response into out. An
// empty response body leaves out untouched. Every failure is an *APIError.
func (c *Client) Call(ctx context.Context, ep Endpoint, body, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Endpoint: ep.URL, Message: "failed to encode request", Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, payload)
	if err != nil {
		return &APIError{Endpoint: ep.URL, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Endpoint: ep.URL, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Endpoint: ep.URL, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Endpoint: ep.URL, Status: resp.StatusCode, Message: upstreamMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Endpoint: ep.URL, Status: resp.StatusCode, Message: "invalid response body", Err: err}
	}

	return nil
}

func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}

	return strings.TrimSpace(string(raw))
}

// Load resolves the first workspace and fetches its connections, sources,
// destinations and the available connector definitions.
func (c *Client) Load(ctx context.Context) error {
	var ws struct {
		Workspaces []struct {
			WorkspaceID string `json:"workspaceId"`
		} `json:"workspaces"`
	}

	ep := c.endpoint(List, Workspaces)
	if err := c.Call(ctx, ep, nil, &ws); err != nil {
		return errors.Wrap(err, "failed to retrieve airbyte workspace")
	}

	if len(ws.Workspaces) == 0 {
		return &APIError{Endpoint: ep.URL, Status: http.StatusOK, Message: "no workspaces found"}
	}

	inv := Inventory{WorkspaceID: ws.Workspaces[0].WorkspaceID}
	lists := []struct {
		resource Resource
		key      string
		into     *[]Object
	}{
		{Connections, "connections", &inv.Connections},
		{Sources, "sources", &inv.Sources},
		{Destinations, "destinations", &inv.Destinations},
		{DestinationDefinitions, "destinationDefinitions", &inv.DestinationDefinitions},
		{SourceDefinitions, "sourceDefinitions", &inv.SourceDefinitions},
	}

	for _, l := range lists {
		var resp map[string][]Object
		if err := c.Call(ctx, c.endpoint(List, l.resource), c.workspaceBody(inv.WorkspaceID), &resp); err != nil {
			return errors.Wrap(err, "failed to retrieve airbyte connections, sources and destinations")
		}
		*l.into = resp[l.key]
	}

	c.Inventory = inv
	return nil
}

// Create creates an entity and returns the API's representation of it.
func (c *Client) Create(ctx context.Context, r Resource, body Object) (Object, error) {
	var out Object
	if err := c.Call(ctx, c.endpoint(Create, r), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates an entity and returns the API's representation of it.
func (c *Client) Update(ctx context.Context, r Resource, body Object) (Object, error) {
	var out Object
	if err := c.Call(ctx, c.endpoint(Update, r), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) workspaceBody(id string) map[string]string {
	return map[string]string{"workspaceId": id}
}

// FindByName returns the first object whose "name" equals name.
func FindByName(objects []Object, name string) (Object, bool) {
	for _, o := range objects {
		if n, _ := o["name"].(string); n == name {
			return o, true
		}
	}

	return nil, false
}

// FindByID returns the first object whose key field equals id.
func FindByID(objects []Object, key, id string) (Object, bool) {
	for _, o := range objects {
		if v, _ := o[key].(string); v == id {
			return o, true
		}
	}

	return nil, false
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("airbyte API error in endpoint %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("airbyte API error in endpoint %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// ExitCode implements cli.ExitCoder.
func (e *APIError) ExitCode() int { return consts.ExitExternal }

func (e *APIError) Unwrap() error { return e.Err }

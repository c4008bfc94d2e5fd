// Package airbyte is a small client for the Airbyte configuration API, used
// by the extract and load commands to move connection, source and
// destination definitions between an Airbyte instance and files on disk.
//
// Every operation is a JSON POST to <host>:<port>/api/v1/<resource>/<verb>.
// The client exposes the full endpoint table through typed accessors:
//
//	client := airbyte.New("http://localhost", "8000")
//	ep, _ := client.Endpoint(airbyte.List, airbyte.Sources)
//
//	var resp struct {
//		Sources []airbyte.Object `json:"sources"`
//	}
//	err := client.Call(ctx, ep, map[string]string{"workspaceId": id}, &resp)
//
// Failures are always reported as *APIError carrying the endpoint and the
// upstream status and message, never as a bare transport error.
package airbyte

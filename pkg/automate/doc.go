// Package automate is a client for the ConnectWise Automate REST API focused
// on inventory: computers, clients, locations and groups.
//
// # Overview
//
// A Client logs in with a username, password and integrator client ID,
// keeps the bearer token it receives and refreshes it on demand. Every
// request carries the token and the client ID. A request denied with 401 is
// sent once more after a fresh login; nothing else is retried.
//
// On top of the plain list and detail accessors the client offers analytics
// built from several requests:
//
//   - InventorySummary counts computers per client, per operating system and
//     per online state.
//   - OfflineComputers and StaleComputers find agents that stopped reporting.
//   - ClientComputers resolves a client by partial name.
//   - CheckComputersExist looks up up to 50 computer names.
//
// # Example
//
//	client, err := automate.NewClient(&automate.Config{
//	  ServerURL: "https://automate.example.com",
//	  Username:  "api-user",
//	  Password:  os.Getenv("CWA_PASSWORD"),
//	  ClientID:  os.Getenv("CWA_CLIENT_ID"),
//	  Logger:    logger,
//	})
//	if err != nil {
//	  return err
//	}
//	summary, err := client.InventorySummary(ctx, 0)
//
// # Conditions
//
// List endpoints accept an SQL-like condition string. The client passes it
// through untouched; Equals, Like, And and Quote help build one. The server
// rejects relational comparisons on timestamp fields, so the offline and
// stale searches filter by status on the server and by LastContact locally.
//
// # Compaction
//
// Computer records carry around sixty fields. Compact mode, the default for
// computer lists, asks the server for CompactFields only and filters the
// reply to the same set in case the server ignores the projection. Detail
// fetches are never compacted.
//
// # Endpoints
//
//   - POST /cwa/api/v1/apitoken
//   - GET  /cwa/api/v1/computers
//   - GET  /cwa/api/v1/computers/:id
//   - GET  /cwa/api/v1/computers/:id/software
//   - GET  /cwa/api/v1/clients
//   - GET  /cwa/api/v1/clients/:id
//   - GET  /cwa/api/v1/locations
//   - GET  /cwa/api/v1/locations/:id
//   - GET  /cwa/api/v1/groups
//   - GET  /cwa/api/v1/groups/:id
package automate

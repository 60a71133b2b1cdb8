// Package claims implements the claim browsing and annotation feature.
//
// It is a read-mostly consumer of the tables the ingest pipeline owns:
// claim rows are never mutated here, only queried. Flags and notes are
// owned by this package and survive reloads as long as their claim id does.
//
// # Components
//
//   - Service: listing/search/filtering, claim bundles, dashboard and
//     analytics aggregates, flag/note mutations with owner-or-admin checks,
//     and CSV export.
//   - Handler: JSON endpoints plus the CSV attachment route.
//
// # HTTP Endpoints
//
//   - GET  /dashboard, /analytics : Aggregate statistics (test insurers excluded).
//   - GET  /claims, /claims/:id, /claims/:id/export : Browsing and export.
//   - GET  /claim-details : Detail row listing.
//   - POST /claims/:id/flags, /claims/:id/notes : Annotations.
//   - GET/POST/PUT/DELETE /flags, /notes : Annotation management.
package claims

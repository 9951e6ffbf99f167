// Package iam resolves request credentials into authenticated principals.
//
// The resolver reconciles three credential sources (headers, request-state
// locals, base64 cookies) into exactly one of three request contexts:
//
//   - agency: an agency-user login id was supplied; the agency user is
//     rebuilt from upstream claims and never persisted
//   - identity: an identity id was supplied; the durable identity record is
//     looked up and lazily created from header attributes on first contact
//   - anonymous: no credential; the request proceeds without a principal
//
// Store failures during identity lookup or creation abort the request with
// an authentication error; a missing credential never does.
package iam

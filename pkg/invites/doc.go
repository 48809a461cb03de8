// Package invites implements the invite token lifecycle: issuing
// time-boxed tokens that carry a pending role grant, resolving them,
// consuming them on acceptance, and sweeping expired ones.
package invites

// Package roles implements role definitions scoped to a tenant (or global),
// the validation rules for creating and updating them, and their Postgres
// persistence including the user-membership join table.
package roles

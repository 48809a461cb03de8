// Package tenants manages tenant registration and renaming. Creating a
// tenant also creates its built-in super-admin role and grants it to the
// creator, atomically.
package tenants

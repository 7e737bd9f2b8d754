// Package password provides the default argon2id implementation of the
// authcore PasswordHasher collaborator. Hashes use the PHC string format so
// parameters travel with the hash and verification never depends on the
// hasher's current configuration.
package password

// Package password implements argon2id credential hashing and verification
// with PHC-encoded hashes.
//
// Verification re-derives the key with the parameters embedded in the stored
// hash and compares via crypto/subtle in constant time. NeedsRehash lets
// callers upgrade stored hashes when configured parameters outgrow the ones
// a hash was created with.
//
// # What this package must NOT do
//
//   - Persist anything or perform I/O beyond crypto/rand.
//   - Import tokengate or any sibling package.
package password

package port

// PasswordHasher is the opaque one-way hashing collaborator. Digests are
// never compared directly, only through Verify.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// SessionIssuer mints the opaque session credential returned after a
// successful authentication. Validation and revocation of sessions happen
// outside this service.
type SessionIssuer interface {
	Issue(claims map[string]string) (string, error)
}

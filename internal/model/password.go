package model

// PasswordHasher is the opaque hash-and-verify capability used for local
// credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

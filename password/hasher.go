package password

// Hasher is the one-way hash/verify capability the Engine depends on.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) (bool, error)
}

// Chain hashes with argon2id and verifies either argon2id or legacy bcrypt
// hashes. Any bcrypt hash reports NeedsUpgrade so it is replaced on the next
// successful login.
type Chain struct {
	primary *Argon2
	legacy  *Bcrypt
}

// NewChain builds a Chain from an argon2 hasher and an optional bcrypt
// verifier.
func NewChain(primary *Argon2, legacy *Bcrypt) *Chain {
	return &Chain{primary: primary, legacy: legacy}
}

func (c *Chain) Hash(password string) (string, error) {
	return c.primary.Hash(password)
}

func (c *Chain) Verify(password, encodedHash string) (bool, error) {
	switch {
	case c.primary.Supports(encodedHash):
		return c.primary.Verify(password, encodedHash)
	case c.legacy != nil && c.legacy.Supports(encodedHash):
		return c.legacy.Verify(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}

func (c *Chain) NeedsUpgrade(encodedHash string) (bool, error) {
	switch {
	case c.primary.Supports(encodedHash):
		return c.primary.NeedsUpgrade(encodedHash)
	case c.legacy != nil && c.legacy.Supports(encodedHash):
		return true, nil
	default:
		return false, ErrUnsupportedHash
	}
}

package datafetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var ErrDigestMismatch = errors.New("digest mismatch")

// Digest is an expected archive checksum, written as "<algorithm>:<hex>".
type Digest struct {
	Algorithm string
	Sum       []byte
}

func ParseDigest(s string) (Digest, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Digest{}, nil
	}
	algo, hexSum, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, fmt.Errorf("digest %q: missing algorithm prefix", s)
	}
	sum, err := hex.DecodeString(hexSum)
	if err != nil {
		return Digest{}, fmt.Errorf("digest %q: %w", s, err)
	}
	d := Digest{Algorithm: strings.ToLower(algo), Sum: sum}
	if _, err := d.newHash(); err != nil {
		return Digest{}, err
	}
	return d, nil
}

func (d Digest) IsZero() bool { return d.Algorithm == "" }

func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Algorithm + ":" + hex.EncodeToString(d.Sum)
}

func (d Digest) newHash() (hash.Hash, error) {
	switch d.Algorithm {
	case "sha256":
		if len(d.Sum) != sha256.Size {
			return nil, fmt.Errorf("sha256 digest must be %d bytes, got %d", sha256.Size, len(d.Sum))
		}
		return sha256.New(), nil
	case "blake2b":
		switch len(d.Sum) {
		case blake2b.Size256:
			return blake2b.New256(nil)
		case blake2b.Size:
			return blake2b.New512(nil)
		}
		return nil, fmt.Errorf("blake2b digest must be %d or %d bytes, got %d", blake2b.Size256, blake2b.Size, len(d.Sum))
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", d.Algorithm)
	}
}

func (d Digest) verify(h hash.Hash) error {
	got := h.Sum(nil)
	if !bytes.Equal(got, d.Sum) {
		return fmt.Errorf("%w: want %s, got %s:%s", ErrDigestMismatch, d, d.Algorithm, hex.EncodeToString(got))
	}
	return nil
}

// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package sec provides cryptographic primitives and token management.

It isolates security-sensitive code (password hashing, JWT signing) from the
domain logic. Components here are Infrastructure services injected into the
Application layer via constructors.

Contents:

  - Hasher: Argon2id password hashing with a server-side paraphrase.
  - TokenCodec: Signing and verification of the three Viewr token kinds.
  - Random helpers: Opaque tokens for the password-reset flow.
*/
package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. Memory is expressed in KiB per the argon2 API.
const (
	hashMemoryKiB  uint32 = 64 * 1024
	hashTimeCost   uint32 = 3
	hashThreads    uint8  = 2
	hashSaltLength        = 16
	hashKeyLength  uint32 = 32

	hashAlgorithmID = "argon2id"
)

// Hasher hashes and verifies passwords using Argon2id.
//
// # Paraphrase
//
// A server-wide secret ("paraphrase") is appended to the plaintext before key
// derivation. It never appears in the encoded hash, so a leaked database alone
// is not sufficient to mount an offline attack.
type Hasher struct {
	paraphrase string
}

// NewHasher constructs a [Hasher] with the given server-side paraphrase.
func NewHasher(paraphrase string) *Hasher {
	return &Hasher{paraphrase: paraphrase}
}

/*
Hash derives an Argon2id hash of the plaintext and encodes it in PHC format.

Parameters:
  - plaintext: string

Returns:
  - string: PHC-encoded hash ($argon2id$v=19$m=...,t=...,p=...$salt$hash)
  - error: Entropy failures
*/
func (hasher *Hasher) Hash(plaintext string) (string, error) {

	// Fresh random salt for every hash
	salt := make([]byte, hashSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("sec_hash_salt_failed: %w", err)
	}

	key := argon2.IDKey(
		hasher.keyMaterial(plaintext),
		salt,
		hashTimeCost,
		hashMemoryKiB,
		hashThreads,
		hashKeyLength,
	)

	encoded := fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		hashAlgorithmID,
		argon2.Version,
		hashMemoryKiB,
		hashTimeCost,
		hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

/*
Verify compares a plaintext against a PHC-encoded hash in constant time.

Description: A mismatch is NOT an error — it returns (false, nil). An error is
returned only when the stored hash itself is malformed.

Parameters:
  - encodedHash: string (PHC format)
  - plaintext: string

Returns:
  - bool: true when the plaintext matches
  - error: Malformed hash input
*/
func (hasher *Hasher) Verify(encodedHash, plaintext string) (bool, error) {
	memory, timeCost, threads, salt, key, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		hasher.keyMaterial(plaintext),
		salt,
		timeCost,
		memory,
		threads,
		uint32(len(key)),
	)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// keyMaterial mixes the server paraphrase into the derivation input.
func (hasher *Hasher) keyMaterial(plaintext string) []byte {
	return []byte(plaintext + hasher.paraphrase)
}

// parseEncodedHash decomposes a PHC-encoded Argon2id hash string.
func parseEncodedHash(encoded string) (memory, timeCost uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return 0, 0, 0, nil, nil, errors.New("sec: malformed password hash")
	}

	if parts[1] != hashAlgorithmID {
		return 0, 0, 0, nil, nil, errors.New("sec: unsupported hash algorithm")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, errors.New("sec: malformed hash version")
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("sec: unsupported argon2 version")
	}

	memory, timeCost, threads, err = parseHashParams(parts[3])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, errors.New("sec: malformed hash salt")
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, errors.New("sec: malformed hash key")
	}

	return memory, timeCost, threads, salt, key, nil
}

// parseHashParams parses the "m=...,t=...,p=..." parameter segment.
func parseHashParams(segment string) (memory, timeCost uint32, threads uint8, err error) {
	pairs := strings.Split(segment, ",")
	if len(pairs) != 3 {
		return 0, 0, 0, errors.New("sec: malformed hash parameters")
	}

	for _, pair := range pairs {
		keyValue := strings.SplitN(pair, "=", 2)
		if len(keyValue) != 2 {
			return 0, 0, 0, errors.New("sec: malformed hash parameter entry")
		}

		switch keyValue[0] {
		case "m":
			value, parseErr := strconv.ParseUint(keyValue[1], 10, 32)
			if parseErr != nil || value == 0 {
				return 0, 0, 0, errors.New("sec: malformed memory parameter")
			}
			memory = uint32(value)
		case "t":
			value, parseErr := strconv.ParseUint(keyValue[1], 10, 32)
			if parseErr != nil || value == 0 {
				return 0, 0, 0, errors.New("sec: malformed time parameter")
			}
			timeCost = uint32(value)
		case "p":
			value, parseErr := strconv.ParseUint(keyValue[1], 10, 8)
			if parseErr != nil || value == 0 {
				return 0, 0, 0, errors.New("sec: malformed parallelism parameter")
			}
			threads = uint8(value)
		default:
			return 0, 0, 0, errors.New("sec: unknown hash parameter")
		}
	}

	if memory == 0 || timeCost == 0 || threads == 0 {
		return 0, 0, 0, errors.New("sec: missing hash parameters")
	}

	return memory, timeCost, threads, nil
}

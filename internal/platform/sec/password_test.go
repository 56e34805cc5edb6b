// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

/*
TestHasher_RoundTrip verifies that a hashed password verifies against its
original plaintext and nothing else.
*/
func TestHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewHasher("server-paraphrase")

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := hasher.Verify(encoded, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	// A mismatch is a clean false, never an error
	ok, err = hasher.Verify(encoded, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

/*
TestHasher_ParaphraseBinding verifies that a hash produced under one server
paraphrase does not verify under another.
*/
func TestHasher_ParaphraseBinding(t *testing.T) {
	hasherA := sec.NewHasher("paraphrase-a")
	hasherB := sec.NewHasher("paraphrase-b")

	encoded, err := hasherA.Hash("secret-password")
	require.NoError(t, err)

	ok, err := hasherB.Verify(encoded, "secret-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

/*
TestHasher_SaltUniqueness verifies two hashes of the same plaintext differ.
*/
func TestHasher_SaltUniqueness(t *testing.T) {
	hasher := sec.NewHasher("server-paraphrase")

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestHasher_MalformedHash verifies that only malformed input produces an error.
*/
func TestHasher_MalformedHash(t *testing.T) {
	hasher := sec.NewHasher("server-paraphrase")

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not_phc", "plainly-not-a-hash"},
		{"wrong_algorithm", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"missing_segments", "$argon2id$v=19$m=65536,t=3,p=2"},
		{"bad_salt_encoding", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{"bad_params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hasher.Verify(tt.encoded, "whatever")
			assert.Error(t, err)
		})
	}
}

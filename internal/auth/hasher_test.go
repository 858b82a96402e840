// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

// cheapParams keeps tests fast.
var cheapParams = auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := auth.NewArgon2idHasher(cheapParams)

	t.Run("encodes parameters", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		h1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		h2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})
}

func TestArgon2idHasher_Verify(t *testing.T) {
	hasher := auth.NewArgon2idHasher(cheapParams)
	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	ok, err := hasher.Verify("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("verifies with the parameters in the hash", func(t *testing.T) {
		other := auth.NewArgon2idHasher(auth.Argon2Params{Time: 2, Memory: 2048, Threads: 2, SaltLen: 8, KeyLen: 16})
		ok, err := other.Verify("correct horse", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	malformed := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1024,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=18$m=1024,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=1024,t=1,p=0$AAAA$AAAA",
		"$argon2id$v=19$m=1024,t=1,p=300$AAAA$AAAA",
		"$argon2id$v=19$garbage$AAAA$AAAA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$AAAA",
		"$argon2id$v=19$m=1024,t=1,p=1$AAAA$",
	}
	for _, h := range malformed {
		t.Run("malformed "+h, func(t *testing.T) {
			_, err := hasher.Verify("x", h)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
		})
	}
}

func TestArgon2idHasher_NeedsUpgrade(t *testing.T) {
	cheap := auth.NewArgon2idHasher(cheapParams)
	hash, err := cheap.Hash("pw")
	require.NoError(t, err)

	assert.False(t, cheap.NeedsUpgrade(hash))
	assert.True(t, auth.NewArgon2idHasher(auth.DefaultArgon2Params).NeedsUpgrade(hash))
	assert.True(t, cheap.NeedsUpgrade("$2a$10$legacybcrypt"))
}

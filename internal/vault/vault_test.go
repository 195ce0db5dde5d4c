package vault

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T, master string) *Vault {
	t.Helper()
	v, err := New(Config{MasterKey: master, Salt: "test-salt"})
	require.NoError(t, err)
	return v
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault(t, "master")

	sealed, err := v.Encrypt("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", sealed)

	plain, err := v.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "1234", plain)
}

func TestVaultNonceIsRandom(t *testing.T) {
	v := newTestVault(t, "master")

	a, err := v.Encrypt("123")
	require.NoError(t, err)
	b, err := v.Encrypt("123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVaultEmptyStaysEmpty(t *testing.T) {
	v := newTestVault(t, "master")

	sealed, err := v.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	plain, err := v.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestVaultRejectsTamperedCiphertext(t *testing.T) {
	v := newTestVault(t, "master")

	sealed, err := v.Encrypt("987")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = v.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestVaultRejectsForeignKey(t *testing.T) {
	sealed, err := newTestVault(t, "master").Encrypt("987")
	require.NoError(t, err)

	_, err = newTestVault(t, "other").Decrypt(sealed)
	assert.Error(t, err)
}

func TestVaultShortAndMalformedInput(t *testing.T) {
	v := newTestVault(t, "master")

	_, err := v.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = v.Decrypt("not base64!!")
	assert.Error(t, err)
}

func TestNewRequiresMasterKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

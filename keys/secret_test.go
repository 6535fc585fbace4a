package keys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"seasign-bias/attack"
)

func TestSecretRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "secret.json")
	p := attack.ParameterSetII()
	require.NoError(t, SaveSecret(path, p, attack.FixedSecret()))

	sf, err := LoadSecret(path)
	require.NoError(t, err)
	require.Equal(t, p, sf.Params)
	require.Equal(t, attack.FixedSecret(), sf.Secret)
	require.NotEmpty(t, sf.Timestamp)
}

func TestSaveSecretRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.json")
	err := SaveSecret(path, attack.ParameterSetI(), attack.Vector{1, 2, 3})
	require.True(t, errors.Is(err, attack.ErrInvalidInput))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestLoadSecretRejectsTampered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.json")
	body := `{"version":"seasign-secret-v1","params":{"n":2,"b":1,"delta":3,"t":4},"secret":[0,7]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	_, err := LoadSecret(path)
	require.ErrorIs(t, err, attack.ErrInvalidInput)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"other"}`), 0o644))
	_, err = LoadSecret(path)
	require.Error(t, err)
}

func TestBatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := attack.NewParams("tiny", 3, 5, 2, 4)
	require.NoError(t, err)
	sampler := attack.NewSampler(attack.NewMathRandSource(4))
	secret, err := sampler.Sample(p.N, p.B)
	require.NoError(t, err)
	batch, _, err := attack.NewGenerator(sampler, p).SampleBatch(secret, 25)
	require.NoError(t, err)

	path := filepath.Join(dir, "batch.json")
	require.NoError(t, SaveBatch(path, &BatchFile{Params: p, KnownSigs: 12, Secret: secret, Samples: batch}))
	bf, err := LoadBatch(path)
	require.NoError(t, err)
	require.Equal(t, batch, bf.Samples)
	require.Equal(t, secret, bf.Secret)

	want, err := attack.Recover(batch, p)
	require.NoError(t, err)
	got, err := attack.Recover(bf.Samples, bf.Params)
	require.NoError(t, err)
	require.Equal(t, want, got)

	bad := &BatchFile{Params: p, Samples: []attack.Vector{{1, 2}}}
	require.ErrorIs(t, SaveBatch(filepath.Join(dir, "bad.json"), bad), attack.ErrInvalidInput)
}

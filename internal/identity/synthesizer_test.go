package identity

import (
	"context"
	ers "errors"
	"hash"
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/recommend-sdk/currentstate/internal/utils/errors"
	"github.com/recommend-sdk/currentstate/pkg/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emulator = fingerprint.Fingerprint{
	Board:        "goldfish_x86",
	Brand:        "google",
	CPUABI:       "x86",
	Device:       "generic_x86",
	Display:      "sdk_gphone_x86-userdebug 10 QSR1.190920.001 5891938 test-keys",
	Host:         "abfarm-east4-101",
	BuildID:      "QSR1.190920.001",
	Manufacturer: "Google",
	Model:        "Android SDK built for x86",
	Product:      "sdk_gphone_x86",
	Tags:         "test-keys",
	Type:         "userdebug",
	User:         "android-build",
}

func uniform(v string) fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		Board: v, Brand: v, CPUABI: v, Device: v, Display: v, Host: v, BuildID: v,
		Manufacturer: v, Model: v, Product: v, Tags: v, Type: v, User: v,
	}
}

type failingProvider struct {
	fingerprint.StaticProvider
	failFingerprint, failSecureID, failAdapter bool
}

func (f failingProvider) Fingerprint(ctx context.Context) (fingerprint.Fingerprint, error) {
	if f.failFingerprint {
		return fingerprint.Fingerprint{}, fingerprint.ErrUnavailable
	}
	return f.StaticProvider.Fingerprint(ctx)
}

func (f failingProvider) SecureID(ctx context.Context) (string, error) {
	if f.failSecureID {
		return "", fingerprint.ErrUnavailable
	}
	return f.StaticProvider.SecureID(ctx)
}

func (f failingProvider) AdapterAddress(ctx context.Context) (string, error) {
	if f.failAdapter {
		return "", fingerprint.ErrUnavailable
	}
	return f.StaticProvider.AdapterAddress(ctx)
}

func TestSynthesizeKnownIds(t *testing.T) {
	tables := []struct {
		name     string
		provider fingerprint.StaticProvider
		want     string
	}{
		{
			name:     "emulator",
			provider: fingerprint.StaticProvider{Build: emulator, Secure: "9774d56d682e549c", Adapter: "02:00:00:00:00:00"},
			want:     "446AC982420D23D31ED2CD49378F74B9",
		},
		{
			name:     "empty attributes",
			provider: fingerprint.StaticProvider{},
			want:     "185C19DEF58C0EE4CCFF63900D39A43E",
		},
		{
			// multi-byte characters: digest covers only the first len(UTF-16) bytes
			name:     "non-ascii",
			provider: fingerprint.StaticProvider{Build: uniform("Pixel"), Secure: "é", Adapter: "✓"},
			want:     "D29A788618F574B835E91AB0425CB352",
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			id, err := NewSynthesizer(table.provider).Synthesize(context.Background())
			require.NoError(t, err)
			assert.Equal(t, table.want, id)
		})
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	format := regexp.MustCompile(`^[0-9A-F]{32}$`)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("same input gives same 32 char uppercase hex id", prop.ForAll(
		func(board, model, secure, adapter string) bool {
			build := emulator
			build.Board = board
			build.Model = model
			provider := fingerprint.StaticProvider{Build: build, Secure: secure, Adapter: adapter}

			first, err := NewSynthesizer(provider).Synthesize(context.Background())
			if err != nil {
				return false
			}
			second, err := NewSynthesizer(provider).Synthesize(context.Background())
			if err != nil {
				return false
			}

			return first == second && format.MatchString(first)
		},
		gen.AnyString(),
		gen.AlphaString(),
		gen.Identifier(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestSynthesizeDependsOnlyOnLengthOfAttributes(t *testing.T) {
	a := fingerprint.StaticProvider{Build: uniform("abc"), Secure: "s", Adapter: "m"}
	b := fingerprint.StaticProvider{Build: uniform("xyz"), Secure: "s", Adapter: "m"}
	c := fingerprint.StaticProvider{Build: uniform("abcd"), Secure: "s", Adapter: "m"}

	idA, err := NewSynthesizer(a).Synthesize(context.Background())
	require.NoError(t, err)
	idB, err := NewSynthesizer(b).Synthesize(context.Background())
	require.NoError(t, err)
	idC, err := NewSynthesizer(c).Synthesize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, idA, idB)
	assert.NotEqual(t, idA, idC)
}

func TestSynthesizeFailures(t *testing.T) {
	static := fingerprint.StaticProvider{Build: emulator, Secure: "s", Adapter: "m"}

	tables := []struct {
		name        string
		synthesizer *Synthesizer
	}{
		{"no provider", NewSynthesizer(nil)},
		{"no hash", NewSynthesizer(static, WithHash(nil))},
		{"nil hash", NewSynthesizer(static, WithHash(func() hash.Hash { return nil }))},
		{"fingerprint unavailable", NewSynthesizer(failingProvider{StaticProvider: static, failFingerprint: true})},
		{"secure id unavailable", NewSynthesizer(failingProvider{StaticProvider: static, failSecureID: true})},
		{"adapter unavailable", NewSynthesizer(failingProvider{StaticProvider: static, failAdapter: true})},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			id, err := table.synthesizer.Synthesize(context.Background())

			assert.Empty(t, id)
			var synthesisErr *errors.IdentitySynthesisFailedError
			assert.True(t, ers.As(err, &synthesisErr), "unexpected error %v", err)
		})
	}
}

// Package identity derives a stable device id from the host hardware fingerprint.
//
// The derivation must stay byte-for-byte compatible with ids issued by earlier SDK versions:
//
//	prefix   = "35" + for each of the 13 build attributes: (length mod 10)
//	base     = prefix + secureID + adapterAddress
//	input    = base + salt + (len(base) * len(salt))
//	deviceID = upper(hex(md5(input)))
//
// Lengths are counted in UTF-16 code units and the digest covers the first len(input) bytes of
// the UTF-8 encoding, like earlier SDK versions. For ASCII input this is simply the whole input.
package identity

import (
	"context"
	"crypto/md5"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/recommend-sdk/currentstate/internal/constants"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/recommend-sdk/currentstate/internal/utils/errors"
	"github.com/recommend-sdk/currentstate/pkg/fingerprint"
)

const prefix = "35"

//Synthesizer Derives device ids. It has no state besides its inputs.
type Synthesizer struct {
	provider fingerprint.Provider
	newHash  func() hash.Hash
	salt     string
}

//Option Synthesizer option.
type Option func(*Synthesizer)

//WithHash Replaces the digest constructor. Nil makes synthesis fail.
func WithHash(newHash func() hash.Hash) Option {
	return func(s *Synthesizer) {
		s.newHash = newHash
	}
}

//NewSynthesizer Creates synthesizer reading the fingerprint from provider.
func NewSynthesizer(provider fingerprint.Provider, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		provider: provider,
		newHash:  md5.New,
		salt:     constants.IdentitySalt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func failed(msg string, err error) error {
	return &errors.IdentitySynthesisFailedError{Msg: msg, Err: err}
}

//Synthesize Returns 32 uppercase hex characters derived from the fingerprint.
func (s *Synthesizer) Synthesize(ctx context.Context) (string, error) {
	logger := logging.FromContext(ctx).Named("identity.Synthesize")

	if s.provider == nil {
		return "", failed("no fingerprint provider", nil)
	}
	if s.newHash == nil {
		return "", failed("hashing primitive unavailable", nil)
	}

	build, err := s.provider.Fingerprint(ctx)
	if err != nil {
		return "", failed("could not read build attributes", err)
	}

	secureID, err := s.provider.SecureID(ctx)
	if err != nil {
		return "", failed("could not read secure id", err)
	}

	adapterAddress, err := s.provider.AdapterAddress(ctx)
	if err != nil {
		return "", failed("could not read adapter address", err)
	}

	var b strings.Builder
	b.WriteString(prefix)
	for _, attr := range build.Attributes() {
		b.WriteString(strconv.Itoa(utf16Len(attr) % 10))
	}
	b.WriteString(secureID)
	b.WriteString(adapterAddress)

	base := b.String()
	input := base + s.salt + strconv.Itoa(utf16Len(base)*utf16Len(s.salt))

	data := []byte(input)
	if n := utf16Len(input); n < len(data) {
		data = data[:n]
	}

	h := s.newHash()
	if h == nil {
		return "", failed("hashing primitive unavailable", nil)
	}
	if _, err := h.Write(data); err != nil {
		return "", failed("could not hash fingerprint", err)
	}

	deviceID := fmt.Sprintf("%X", h.Sum(nil))

	logger.Debugf("Synthesized device id %v", deviceID)

	return deviceID, nil
}

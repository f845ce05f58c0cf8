package fingerprint

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

//EnvProvider Provider reading the attributes from environment variables (RECOMMEND_BUILD_*,
//RECOMMEND_SECURE_ID, RECOMMEND_ADAPTER_ADDRESS). An unset variable means the attribute is
//unavailable, a variable set to an empty string is a valid empty attribute.
type EnvProvider struct {
	lookuper envconfig.Lookuper
}

type secureIDEnv struct {
	Value string `env:"RECOMMEND_SECURE_ID,required"`
}

type adapterAddressEnv struct {
	Value string `env:"RECOMMEND_ADAPTER_ADDRESS,required"`
}

//NewEnvProvider Creates provider reading from lookuper, or from the process environment when nil.
func NewEnvProvider(lookuper envconfig.Lookuper) *EnvProvider {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	return &EnvProvider{lookuper: lookuper}
}

func (e *EnvProvider) process(ctx context.Context, dst interface{}) error {
	if err := envconfig.ProcessWith(ctx, dst, e.lookuper); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

//Fingerprint Returns the build attributes.
func (e *EnvProvider) Fingerprint(ctx context.Context) (Fingerprint, error) {
	var f Fingerprint
	if err := e.process(ctx, &f); err != nil {
		return Fingerprint{}, err
	}
	return f, nil
}

//SecureID Returns the platform-assigned secure id.
func (e *EnvProvider) SecureID(ctx context.Context) (string, error) {
	var v secureIDEnv
	if err := e.process(ctx, &v); err != nil {
		return "", err
	}
	return v.Value, nil
}

//AdapterAddress Returns the hardware adapter address.
func (e *EnvProvider) AdapterAddress(ctx context.Context) (string, error) {
	var v adapterAddressEnv
	if err := e.process(ctx, &v); err != nil {
		return "", err
	}
	return v.Value, nil
}

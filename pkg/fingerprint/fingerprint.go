// Package fingerprint supplies the host hardware attributes used to derive a device id.
package fingerprint

import (
	"context"
	"errors"
)

//ErrUnavailable The host cannot provide the requested attribute.
var ErrUnavailable = errors.New("attribute unavailable")

//Fingerprint Platform build attributes. All values are opaque and may be empty.
type Fingerprint struct {
	Board        string `env:"RECOMMEND_BUILD_BOARD,required"`
	Brand        string `env:"RECOMMEND_BUILD_BRAND,required"`
	CPUABI       string `env:"RECOMMEND_BUILD_CPU_ABI,required"`
	Device       string `env:"RECOMMEND_BUILD_DEVICE,required"`
	Display      string `env:"RECOMMEND_BUILD_DISPLAY,required"`
	Host         string `env:"RECOMMEND_BUILD_HOST,required"`
	BuildID      string `env:"RECOMMEND_BUILD_ID,required"`
	Manufacturer string `env:"RECOMMEND_BUILD_MANUFACTURER,required"`
	Model        string `env:"RECOMMEND_BUILD_MODEL,required"`
	Product      string `env:"RECOMMEND_BUILD_PRODUCT,required"`
	Tags         string `env:"RECOMMEND_BUILD_TAGS,required"`
	Type         string `env:"RECOMMEND_BUILD_TYPE,required"`
	User         string `env:"RECOMMEND_BUILD_USER,required"`
}

//Attributes Attributes in the order they contribute to the device id.
func (f Fingerprint) Attributes() []string {
	return []string{
		f.Board,
		f.Brand,
		f.CPUABI,
		f.Device,
		f.Display,
		f.Host,
		f.BuildID,
		f.Manufacturer,
		f.Model,
		f.Product,
		f.Tags,
		f.Type,
		f.User,
	}
}

//Provider Capability set of the host platform.
type Provider interface {
	Fingerprint(ctx context.Context) (Fingerprint, error)
	SecureID(ctx context.Context) (string, error)
	AdapterAddress(ctx context.Context) (string, error)
}

//StaticProvider Provider returning fixed values.
type StaticProvider struct {
	Build   Fingerprint
	Secure  string
	Adapter string
}

//Fingerprint Returns the build attributes.
func (s StaticProvider) Fingerprint(context.Context) (Fingerprint, error) {
	return s.Build, nil
}

//SecureID Returns the platform-assigned secure id.
func (s StaticProvider) SecureID(context.Context) (string, error) {
	return s.Secure, nil
}

//AdapterAddress Returns the hardware adapter address.
func (s StaticProvider) AdapterAddress(context.Context) (string, error) {
	return s.Adapter, nil
}

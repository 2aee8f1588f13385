package timezone

import (
	"fmt"
	"sync"

	"github.com/ringsaturn/tzf"
)

// Finder maps coordinates to an IANA zone name.
type Finder interface {
	GetTimezone(latitude, longitude float64) (string, error)
}

type finder struct {
	tz tzf.F
}

var (
	instance *finder
	initErr  error
	once     sync.Once
)

// NewFinder returns the shared finder. The polygon data is loaded once per
// process.
func NewFinder() (Finder, error) {
	once.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		instance = &finder{tz: f}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// GetTimezone returns names like "America/Toronto" or "Asia/Jerusalem".
func (f *finder) GetTimezone(latitude, longitude float64) (string, error) {
	name := f.tz.GetTimezoneName(longitude, latitude)
	if name == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", latitude, longitude)
	}
	return name, nil
}

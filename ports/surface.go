package ports

import (
	"errors"

	"hcpdash/domain/figure"
)

// Surface accepts redraw requests from panels
type Surface interface {
	Redraw(fig figure.Figure) error
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(fig figure.Figure) error

// Redraw calls f(fig)
func (f SurfaceFunc) Redraw(fig figure.Figure) error {
	return f(fig)
}

// Fanout forwards every redraw to each surface in order. All surfaces are tried; their
// errors are joined.
func Fanout(surfaces ...Surface) Surface {
	return SurfaceFunc(func(fig figure.Figure) error {
		var errs []error
		for _, s := range surfaces {
			if err := s.Redraw(fig); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

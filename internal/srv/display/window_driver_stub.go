//go:build !window

package display

import "errors"

var ErrNoWindowSupport = errors.New("built without the window tag")

func newWindowDriver(data DataSource) (Driver, error) {
	return nil, ErrNoWindowSupport
}

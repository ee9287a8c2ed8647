package python

import "errors"

var ErrInvalidPackageName = errors.New("invalid package name")
var ErrNoPureWheel = errors.New("no pure-python wheel available")

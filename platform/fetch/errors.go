package fetch

import "errors"

var ErrSchemeUnsupported = errors.New("artifact URL scheme not supported")
var ErrArtifactUnavailable = errors.New("artifact not available")

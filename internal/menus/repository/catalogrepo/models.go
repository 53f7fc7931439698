package catalogrepo

import "errors"

var ErrCacheMiss = errors.New("catalog cache miss")

package httpx

import "errors"

var errTrailingData = errors.New("httpx: trailing data after JSON body")

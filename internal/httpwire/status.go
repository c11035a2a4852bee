package httpwire

// StatusCode is an HTTP status code.
type StatusCode int

const (
	StatusContinue                     StatusCode = 100
	StatusSwitchingProtocols           StatusCode = 101
	StatusOK                           StatusCode = 200
	StatusCreated                      StatusCode = 201
	StatusAccepted                     StatusCode = 202
	StatusNonAuthoritativeInformation  StatusCode = 203
	StatusNoContent                    StatusCode = 204
	StatusResetContent                 StatusCode = 205
	StatusPartialContent               StatusCode = 206
	StatusMultipleChoices              StatusCode = 300
	StatusMovedPermanently             StatusCode = 301
	StatusFound                        StatusCode = 302
	StatusSeeOther                     StatusCode = 303
	StatusNotModified                  StatusCode = 304
	StatusUseProxy                     StatusCode = 305
	StatusTemporaryRedirect            StatusCode = 307
	StatusBadRequest                   StatusCode = 400
	StatusUnauthorized                 StatusCode = 401
	StatusPaymentRequired              StatusCode = 402
	StatusForbidden                    StatusCode = 403
	StatusNotFound                     StatusCode = 404
	StatusMethodNotAllowed             StatusCode = 405
	StatusNotAcceptable                StatusCode = 406
	StatusProxyAuthRequired            StatusCode = 407
	StatusRequestTimeout               StatusCode = 408
	StatusConflict                     StatusCode = 409
	StatusGone                         StatusCode = 410
	StatusLengthRequired               StatusCode = 411
	StatusPreconditionFailed           StatusCode = 412
	StatusRequestEntityTooLarge        StatusCode = 413
	StatusRequestURITooLong            StatusCode = 414
	StatusUnsupportedMediaType         StatusCode = 415
	StatusRequestedRangeNotSatisfiable StatusCode = 416
	StatusExpectationFailed            StatusCode = 417
	StatusInternalServerError          StatusCode = 500
	StatusNotImplemented               StatusCode = 501
	StatusBadGateway                   StatusCode = 502
	StatusServiceUnavailable           StatusCode = 503
	StatusGatewayTimeout               StatusCode = 504
	StatusHTTPVersionNotSupported      StatusCode = 505
)

var reasons = map[StatusCode]string{
	StatusContinue:                     "Continue",
	StatusSwitchingProtocols:           "Switching Protocols",
	StatusOK:                           "OK",
	StatusCreated:                      "Created",
	StatusAccepted:                     "Accepted",
	StatusNonAuthoritativeInformation:  "Non-Authoritative Information",
	StatusNoContent:                    "No Content",
	StatusResetContent:                 "Reset Content",
	StatusPartialContent:               "Partial Content",
	StatusMultipleChoices:              "Multiple Choices",
	StatusMovedPermanently:             "Moved Permanently",
	StatusFound:                        "Found",
	StatusSeeOther:                     "See Other",
	StatusNotModified:                  "Not Modified",
	StatusUseProxy:                     "Use Proxy",
	StatusTemporaryRedirect:            "Temporary Redirect",
	StatusBadRequest:                   "Bad Request",
	StatusUnauthorized:                 "Unauthorized",
	StatusPaymentRequired:              "Payment Required",
	StatusForbidden:                    "Forbidden",
	StatusNotFound:                     "Not Found",
	StatusMethodNotAllowed:             "Method Not Allowed",
	StatusNotAcceptable:                "Not Acceptable",
	StatusProxyAuthRequired:            "Proxy Authentication Required",
	StatusRequestTimeout:               "Request Time-out",
	StatusConflict:                     "Conflict",
	StatusGone:                         "Gone",
	StatusLengthRequired:               "Length Required",
	StatusPreconditionFailed:           "Precondition Failed",
	StatusRequestEntityTooLarge:        "Request Entity Too Large",
	StatusRequestURITooLong:            "Request-URI Too Large",
	StatusUnsupportedMediaType:         "Unsupported Media Type",
	StatusRequestedRangeNotSatisfiable: "Requested range not satisfiable",
	StatusExpectationFailed:            "Expectation Failed",
	StatusInternalServerError:          "Internal Server Error",
	StatusNotImplemented:               "Not Implemented",
	StatusBadGateway:                   "Bad Gateway",
	StatusServiceUnavailable:           "Service Unavailable",
	StatusGatewayTimeout:               "Gateway Time-out",
	StatusHTTPVersionNotSupported:      "HTTP Version not supported",
}

// Reason returns the reason phrase, or "Unknown" for codes outside the table.
func (c StatusCode) Reason() string {
	if r, ok := reasons[c]; ok {
		return r
	}
	return "Unknown"
}

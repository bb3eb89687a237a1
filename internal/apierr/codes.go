package apierr

// FatSecret error codes with a dedicated kind.
const (
	CodeMissingOAuthParam      = 2
	CodeUnsupportedOAuthParam  = 3
	CodeInvalidSignatureMethod = 4
	CodeInvalidConsumerKey     = 5
	CodeInvalidTimestamp       = 6
	CodeInvalidNonce           = 7
	CodeInvalidSignature       = 8
	CodeRateLimit              = 9
	CodeInvalidAccessToken     = 13
	CodeMissingScope           = 14
	CodeFoodNotFound           = 106
	CodeRecipeNotFound         = 107
	CodeBarcodeNotFound        = 110
)

// remoteKinds is the fixed classification table. Codes absent from it map
// to KindRemote.
var remoteKinds = map[int]Kind{
	CodeMissingOAuthParam:      KindAuthentication,
	CodeUnsupportedOAuthParam:  KindAuthentication,
	CodeInvalidSignatureMethod: KindAuthentication,
	CodeInvalidConsumerKey:     KindAuthentication,
	CodeInvalidTimestamp:       KindAuthentication,
	CodeInvalidNonce:           KindAuthentication,
	CodeInvalidSignature:       KindAuthentication,
	CodeRateLimit:              KindRateLimit,
	CodeInvalidAccessToken:     KindAuthentication,
	CodeMissingScope:           KindAuthentication,
	CodeFoodNotFound:           KindFoodNotFound,
	CodeRecipeNotFound:         KindRecipeNotFound,
	CodeBarcodeNotFound:        KindBarcodeNotFound,
}

// KindForCode maps a non-zero FatSecret error code to its Kind.
func KindForCode(code int) Kind {
	if kind, ok := remoteKinds[code]; ok {
		return kind
	}
	return KindRemote
}

// FromRemote builds the typed error for an API error object. status is the
// HTTP status the object arrived with.
func FromRemote(code int, message string, status int) *Error {
	return &Error{
		Kind:    KindForCode(code),
		Code:    code,
		Status:  status,
		Message: message,
	}
}

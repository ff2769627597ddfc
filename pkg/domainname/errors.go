package domainname

import "errors"

var (
	ErrEmpty            = errors.New("domainname: domain is empty")
	ErrWildcard         = errors.New("domainname: wildcard domains are not allowed")
	ErrIPAddress        = errors.New("domainname: IP addresses are not allowed")
	ErrTooLong          = errors.New("domainname: domain exceeds 253 characters")
	ErrConsecutiveDots  = errors.New("domainname: domain contains consecutive dots")
	ErrBoundary         = errors.New("domainname: domain starts or ends with a dot or hyphen")
	ErrInvalidLabel     = errors.New("domainname: invalid domain label")
	ErrMissingTLD       = errors.New("domainname: domain has no top-level domain")
	ErrUnsupportedTLD   = errors.New("domainname: top-level domain is not supported")
	ErrInvalidCharacter = errors.New("domainname: domain contains invalid characters")
)

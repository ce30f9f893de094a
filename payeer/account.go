// File: payeer/account.go
package payeer

import "regexp"

// Accepted recipient forms: a wallet number [Pp] followed by 7 to 15 digits
// (prefix match, trailing characters tolerated), or a whole-string
// local@domain.tld.
var accountPattern = regexp.MustCompile(`^[Pp][0-9]{7,15}|^.+@.+\..+$`)

// ValidateAccount checks a transfer recipient before submission, so an
// obviously malformed identifier never costs a round trip.
func ValidateAccount(account string) error {
	if !accountPattern.MatchString(account) {
		return &InvalidAccountError{Account: account}
	}
	return nil
}

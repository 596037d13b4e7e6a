package server

import "strings"

// nickSpecialChars extends nickname validation past pure alphanumerics,
// per §4.5.1's explicit allowance ("implementer may broaden per RFC
// 1459"). No length ceiling is imposed; RFC 1459 servers typically cap
// at 9, but §4.5.1 doesn't ask for one and nothing in §8's scenarios
// depends on it.
const nickSpecialChars = "-_[]\\`^{}"

func isValidNick(nick string) bool {
	if nick == "" {
		return false
	}
	for _, r := range nick {
		if isAlnum(r) || strings.ContainsRune(nickSpecialChars, r) {
			continue
		}
		return false
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isValidUsername enforces §4.5.1's "non-empty alphanumeric" for USER's
// first parameter.
func isValidUsername(user string) bool {
	if user == "" {
		return false
	}
	for _, r := range user {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

// isValidChannelName enforces §3/§4.5.3: channel names must start with
// '#' and may not contain spaces or commas (which would break the
// comma-separated multi-target grammar of JOIN/PART).
func isValidChannelName(name string) bool {
	if len(name) < 2 || name[0] != '#' {
		return false
	}
	return !strings.ContainsAny(name[1:], " ,\x07")
}

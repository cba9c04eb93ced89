package ethos

import "strings"

// FormatUserkey turns free-form input into an Ethos userkey. EVM addresses
// become "address:0x…"; anything else is treated as an X (Twitter) handle.
func FormatUserkey(input string) string {
	clean := strings.TrimPrefix(strings.TrimSpace(input), "@")
	if strings.HasPrefix(clean, "0x") && len(clean) == 42 {
		return "address:" + clean
	}
	return "service:x.com:username:" + clean
}

// DisplayNameFallback extracts a readable name from a userkey when neither
// the profile nor the search API yielded one.
func DisplayNameFallback(userkey string) string {
	if _, name, ok := strings.Cut(userkey, "username:"); ok {
		return name
	}
	if _, addr, ok := strings.Cut(userkey, "address:"); ok && len(addr) > 10 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return userkey
}

// ProfileURL returns the app.ethos.network profile page for a userkey.
func ProfileURL(userkey string) string {
	if _, name, ok := strings.Cut(userkey, "username:"); ok {
		return "https://app.ethos.network/profile/x/" + name
	}
	if _, addr, ok := strings.Cut(userkey, "address:"); ok {
		return "https://app.ethos.network/profile/" + addr
	}
	return "https://app.ethos.network/profile/" + userkey
}

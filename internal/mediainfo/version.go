package mediainfo

import "strings"

const (
	AppName = "go-mediainfo-refs"
	AppURL  = "https://github.com/autobrr/go-mediainfo-refs"
)

var AppVersion = "dev"

func SetAppVersion(version string) {
	if version != "" {
		AppVersion = version
	}
}

// FormatVersion renders a build version the way reports print it: "v1.2.3"
// and "1.2.3" both become "v1.2.3", anything else is kept.
func FormatVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return "dev"
	}
	trimmed := strings.TrimPrefix(version, "v")
	if trimmed != "" && trimmed[0] >= '0' && trimmed[0] <= '9' {
		return "v" + trimmed
	}
	return version
}

package enrichment

import (
	"regexp"
	"strings"
)

const (
	Unknown = "Unknown"

	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// ClientInfo is what a User-Agent string tells us about the visitor.
type ClientInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     string
}

// uaRule names a browser or operating system. Rules are evaluated in order
// against the lowercased User-Agent and the first match wins.
type uaRule struct {
	name    string
	match   func(ua string) bool
	version *regexp.Regexp
	// underscores marks versions written as 10_15_7.
	underscores bool
}

func (r uaRule) extractVersion(ua string) string {
	if r.version == nil {
		return ""
	}
	m := r.version.FindStringSubmatch(ua)
	if len(m) < 2 {
		return ""
	}
	if r.underscores {
		return strings.ReplaceAll(m[1], "_", ".")
	}
	return m[1]
}

type deviceRule struct {
	device string
	tokens []string
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// Edge and Chrome both announce "chrome", Safari is announced by everyone, so
// the order of these rules matters.
var defaultBrowserRules = []uaRule{
	{
		name:    "Chrome",
		match:   func(ua string) bool { return strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg") },
		version: regexp.MustCompile(`chrome/([\d.]+)`),
	},
	{
		name:    "Safari",
		match:   func(ua string) bool { return strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome") },
		version: regexp.MustCompile(`version/([\d.]+)`),
	},
	{
		name:    "Firefox",
		match:   func(ua string) bool { return strings.Contains(ua, "firefox") },
		version: regexp.MustCompile(`firefox/([\d.]+)`),
	},
	{
		name:    "Edge",
		match:   func(ua string) bool { return strings.Contains(ua, "edg") },
		version: regexp.MustCompile(`edg/([\d.]+)`),
	},
}

var defaultOSRules = []uaRule{
	{
		name:    "Windows",
		match:   func(ua string) bool { return strings.Contains(ua, "windows") },
		version: regexp.MustCompile(`windows nt ([\d.]+)`),
	},
	{
		name:        "macOS",
		match:       func(ua string) bool { return strings.Contains(ua, "mac os x") },
		version:     regexp.MustCompile(`mac os x ([\d_]+)`),
		underscores: true,
	},
	{
		name:    "Android",
		match:   func(ua string) bool { return strings.Contains(ua, "android") },
		version: regexp.MustCompile(`android ([\d.]+)`),
	},
	{
		name:        "iOS",
		match:       func(ua string) bool { return containsAny(ua, "iphone", "ipad") },
		version:     regexp.MustCompile(`os ([\d_]+)`),
		underscores: true,
	},
	{
		name:  "Linux",
		match: func(ua string) bool { return strings.Contains(ua, "linux") },
	},
}

var defaultDeviceRules = []deviceRule{
	{device: DeviceMobile, tokens: []string{"mobile", "android", "iphone"}},
	{device: DeviceTablet, tokens: []string{"tablet", "ipad"}},
}

// DeviceDetector classifies User-Agent strings with fixed, ordered rule tables.
type DeviceDetector struct {
	browsers []uaRule
	systems  []uaRule
	devices  []deviceRule
}

// NewDeviceDetector creates a DeviceDetector with the built-in rules.
func NewDeviceDetector() *DeviceDetector {
	return &DeviceDetector{
		browsers: defaultBrowserRules,
		systems:  defaultOSRules,
		devices:  defaultDeviceRules,
	}
}

// Detect classifies ua. Unrecognised values fall back to "Unknown" with an
// empty version, and to a desktop device.
func (d *DeviceDetector) Detect(ua string) ClientInfo {
	lower := strings.ToLower(ua)

	info := ClientInfo{
		Browser:    Unknown,
		OS:         Unknown,
		DeviceType: DeviceDesktop,
	}

	for _, r := range d.browsers {
		if r.match(lower) {
			info.Browser = r.name
			info.BrowserVersion = r.extractVersion(lower)
			break
		}
	}

	for _, r := range d.systems {
		if r.match(lower) {
			info.OS = r.name
			info.OSVersion = r.extractVersion(lower)
			break
		}
	}

	for _, r := range d.devices {
		if containsAny(lower, r.tokens...) {
			info.DeviceType = r.device
			break
		}
	}

	return info
}

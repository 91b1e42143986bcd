package useragent

import (
	"fmt"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	Unknown       = "unknown"
)

// Parser wraps the uap-go parser with coarse device type detection
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string
	OS         string
}

var (
	botIndicators = []string{
		"Googlebot", "Bingbot", "Slurp", "DuckDuckBot", "Baiduspider",
		"YandexBot", "facebookexternalhit", "Twitterbot", "LinkedInBot",
		"WhatsApp", "Telegram", "SkypeUriPreview", "bot", "crawler",
		"spider", "scraper",
	}
	mobileDevices = []string{"iPhone", "Android", "BlackBerry", "Windows Phone", "Mobile", "Phone"}
	tabletDevices = []string{"iPad", "Tablet", "Kindle", "Surface"}
	mobileOS      = []string{"iOS", "Android", "Windows Phone", "BlackBerry OS", "Firefox OS", "Sailfish OS"}
	desktopOS     = []string{
		"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu",
		"Chrome OS", "FreeBSD", "OpenBSD", "NetBSD",
	}
)

// NewParser loads regexes from regexFilePath. An empty path selects the
// definitions bundled with uap-go.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath == "" {
		log.Info("using bundled User-Agent definitions")
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	parser, err := uaparser.New(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser from %s: %w", regexFilePath, err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))
	return &Parser{parser: parser, log: log}, nil
}

// Parse classifies a User-Agent string. Empty input yields unknown everywhere.
func (p *Parser) Parse(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{DeviceType: Unknown, Browser: Unknown, OS: Unknown}
	}

	client := p.parser.Parse(userAgent)

	info := DeviceInfo{
		Browser:    family(client.UserAgent.Family),
		OS:         family(client.Os.Family),
		DeviceType: deviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)
	return info
}

func deviceType(client *uaparser.Client, userAgent string) string {
	if containsAny(client.UserAgent.Family, botIndicators) || containsAny(userAgent, botIndicators) {
		return DeviceBot
	}

	if df := client.Device.Family; df != "" && df != "Other" {
		if containsAny(df, tabletDevices) {
			return DeviceTablet
		}
		if containsAny(df, mobileDevices) {
			return DeviceMobile
		}
	}

	osFamily := client.Os.Family
	if containsAny(osFamily, mobileOS) {
		if isTabletOS(osFamily, userAgent) {
			return DeviceTablet
		}
		return DeviceMobile
	}

	if containsAny(osFamily, desktopOS) {
		return DeviceDesktop
	}
	return Unknown
}

// isTabletOS tells iPad from iPhone and Android tablets (no "Mobile" token) from phones.
func isTabletOS(osFamily, userAgent string) bool {
	switch {
	case containsFold(osFamily, "iOS"):
		return containsFold(userAgent, "iPad")
	case containsFold(osFamily, "Android"):
		return !containsFold(userAgent, "Mobile")
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if containsFold(s, n) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	if s == "" || substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func family(s string) string {
	if s == "" || s == "Other" {
		return Unknown
	}
	return s
}

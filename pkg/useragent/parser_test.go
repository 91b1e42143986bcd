package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser_DeviceTypes(t *testing.T) {
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name   string
		ua     string
		device string
	}{
		{
			name:   "desktop_chrome_windows",
			ua:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			device: DeviceDesktop,
		},
		{
			name:   "iphone_safari",
			ua:     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			device: DeviceMobile,
		},
		{
			name:   "ipad_safari",
			ua:     "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			device: DeviceTablet,
		},
		{
			name:   "googlebot",
			ua:     "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			device: DeviceBot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := p.Parse(tt.ua)
			assert.Equal(t, tt.device, info.DeviceType)
			assert.NotEmpty(t, info.Browser)
			assert.NotEmpty(t, info.OS)
		})
	}
}

func TestParser_Empty(t *testing.T) {
	p, err := NewParser("", zap.NewNop())
	require.NoError(t, err)

	info := p.Parse("   ")
	assert.Equal(t, DeviceInfo{DeviceType: Unknown, Browser: Unknown, OS: Unknown}, info)
}

func TestNewParser_MissingFile(t *testing.T) {
	_, err := NewParser("/nonexistent/regexes.yaml", zap.NewNop())
	assert.Error(t, err)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("Mobile Safari", "safari"))
	assert.False(t, containsFold("", "x"))
	assert.False(t, containsFold("x", ""))
}

package analytics

import (
	"testing"

	"shortener-backend/internal/domain"
	"shortener-backend/pkg/useragent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnricher_UserAgent(t *testing.T) {
	parser, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)
	e := NewEnricher(parser, nil)

	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	ip := "203.0.113.7"
	click := &domain.Click{LinkID: 1, UserAgent: &ua, IPAddress: &ip}
	e.Enrich(click)

	require.NotNil(t, click.DeviceType)
	assert.Equal(t, useragent.DeviceMobile, *click.DeviceType)
	assert.NotNil(t, click.Browser)
	assert.NotNil(t, click.OS)
	// без базы GeoIP местоположение не заполняется
	assert.Nil(t, click.Country)
	assert.Nil(t, click.City)
}

func TestEnricher_NoUserAgent(t *testing.T) {
	parser, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)

	click := &domain.Click{LinkID: 1}
	NewEnricher(parser, nil).Enrich(click)
	assert.Nil(t, click.DeviceType)
	assert.Equal(t, domain.DeviceUnknown, click.GetDeviceType())

	var nilEnricher *Enricher
	assert.NotPanics(t, func() { nilEnricher.Enrich(click) })
}

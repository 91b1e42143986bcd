package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, Location{}, r.Lookup("8.8.8.8"))
	assert.NoError(t, r.Close())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/GeoLite2-City.mmdb")
	assert.Error(t, err)
}

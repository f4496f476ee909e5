package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "storefront-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"10.7769","lon":"106.7009","display_name":"Ben Nghe"}]`))
	}))
	defer srv.Close()

	g := NewNominatim(srv.URL, "storefront-test")

	p, err := g.Geocode(context.Background(), "1 Le Loi, Ben Nghe")
	require.NoError(t, err)
	assert.Equal(t, "10.7769", p.Lat.String())
	assert.Equal(t, "106.7009", p.Lon.String())

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.URL, "storefront-test").Geocode(context.Background(), "x")
	assert.Error(t, err)
}

package risk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/safesignal/safesignal/internal/errors"
)

const indicatorSample = `[
  {"page": 1, "pages": 1, "per_page": 20000, "total": 3},
  [
    {"indicator": {"id": "VC.IHR.PSRC.P5"}, "country": {"id": "AU", "value": "Australia"}, "countryiso2code": "AU", "date": "2021", "value": 0.75},
    {"indicator": {"id": "VC.IHR.PSRC.P5"}, "country": {"id": "AU", "value": "Australia"}, "countryiso2code": "AU", "date": "2022", "value": null},
    {"indicator": {"id": "VC.IHR.PSRC.P5"}, "country": {"id": "BR", "value": "Brazil"}, "countryiso2code": "BR", "date": "2021", "value": 22.38}
  ]
]`

func TestWorldBankClientFetchIndicatorRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(indicatorSample))
	}))
	defer srv.Close()

	rows, err := NewWorldBankClient(srv.URL).FetchIndicatorRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "AU", rows[0].CountryCode())
	assert.Equal(t, 2021, rows[0].Year())
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 0.75, *rows[0].Value)
	assert.Nil(t, rows[1].Value)
}

func TestWorldBankClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewWorldBankClient(srv.URL).FetchIndicatorRows(context.Background())
	require.Error(t, err)

	var fetchErr apperrors.DatasetFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "worldbank-homicide", fetchErr.Dataset)
}

func TestDecodeIndicatorResponseErrors(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, err := decodeIndicatorResponse([]byte("<html>nope</html>"))
		assert.Error(t, err)
	})

	t.Run("envelope too short", func(t *testing.T) {
		_, err := decodeIndicatorResponse([]byte(`[{"page": 1}]`))
		assert.Error(t, err)
	})
}

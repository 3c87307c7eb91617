package httpx

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var payload struct {
		Amount float64 `json:"amount"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"amount": 10, "surprise": true}`))
	require.Error(t, DecodeJSON(r, &payload))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"amount": 10}`))
	require.NoError(t, DecodeJSON(r, &payload))
	require.Equal(t, 10.0, payload.Amount)
}

func TestDecodeJSONCapsBodySize(t *testing.T) {
	var payload struct {
		Notes string `json:"notes"`
	}

	big := bytes.Repeat([]byte("x"), maxBodyBytes+1)
	body := append([]byte(`{"notes": "`), big...)
	body = append(body, []byte(`"}`)...)

	r := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	require.Error(t, DecodeJSON(r, &payload))
}
